package feature

import (
	"context"
	"math"
	"strconv"

	"riskscan/internal/constant"
	"riskscan/internal/logic/datasource"
	"riskscan/internal/logic/price"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/ethereum/go-ethereum/params"
	"github.com/zeromicro/go-zero/core/logx"
)

type EthFeatureLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	price  *price.PriceLogic
	logx.Logger
}

func NewEthFeatureLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EthFeatureLogic {
	return &EthFeatureLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		price:  price.NewPriceLogic(ctx, svcCtx),
		Logger: logx.WithContext(ctx),
	}
}

// ExtractFeatures 拉取以太坊地址交易历史并计算定序特征向量
func (l *EthFeatureLogic) ExtractFeatures(address string) (*types.ExtractFeaturesResp, error) {
	txs, err := datasource.NewEthDatasourceLogic(l.ctx, l.svcCtx).FetchNormalized(address)
	if err != nil {
		return nil, err
	}

	features := l.ComputeFeatures(address, txs)
	return &types.ExtractFeaturesResp{
		Address:          address,
		Network:          string(constant.NetworkEthereum),
		FeatureNames:     EthFeatureNames,
		Features:         BuildVector(EthFeatureNames, features),
		TransactionCount: int(math.Round(features["total_txs"])),
	}, nil
}

// ComputeFeatures 从归一化交易构建特征表（账户模型形态）。
// 代币转账先经价格子系统折算为 ETH，再与原生转账一起按月度
// ETH/BTC 比率归一到 BTC 计价，与模型训练时的量纲一致。
func (l *EthFeatureLogic) ComputeFeatures(address string, txs []types.NormalizedTx) map[string]float64 {
	features := make(map[string]float64)

	type sentRecord struct {
		valueBtc float64
		feeBtc   float64
		block    int64
	}
	type receivedRecord struct {
		valueBtc float64
		block    int64
	}

	var sentTxs []sentRecord
	var receivedTxs []receivedRecord
	var allValues, allFees []float64
	var blocks []int64
	counterparties := make(map[string]int)

	for _, tx := range txs {
		// 缺少时间戳的记录无法定价，跳过
		if tx.Timestamp == 0 {
			continue
		}

		valueEth := l.resolveValueEth(tx)

		ethBtc := l.price.EthBtcRatio(tx.Timestamp)
		valueBtc := valueEth * ethBtc
		feeBtc := tx.Fee * ethBtc

		if tx.BlockHeight > 0 {
			blocks = append(blocks, tx.BlockHeight)
		}

		if tx.From == address {
			allFees = append(allFees, feeBtc)
			if valueBtc > 0 {
				sentTxs = append(sentTxs, sentRecord{valueBtc: valueBtc, feeBtc: feeBtc, block: tx.BlockHeight})
				allValues = append(allValues, valueBtc)
				if tx.To != "" {
					counterparties[tx.To]++
				}
			}
		}
		if tx.To == address && valueBtc > 0 {
			receivedTxs = append(receivedTxs, receivedRecord{valueBtc: valueBtc, block: tx.BlockHeight})
			allValues = append(allValues, valueBtc)
			if tx.From != "" {
				counterparties[tx.From]++
			}
		}
	}

	features["num_txs_as_sender"] = float64(len(sentTxs))
	features["num_txs_as_receiver"] = float64(len(receivedTxs))
	features["total_txs"] = float64(len(sentTxs) + len(receivedTxs))

	if len(blocks) > 0 {
		first := minBlock(blocks)
		last := maxBlock(blocks)
		features["first_block_appeared_in"] = first
		features["last_block_appeared_in"] = last
		features["lifetime_in_blocks"] = last - first
		features["num_timesteps_appeared_in"] = uniqueCount(blocks)
	} else {
		features["first_block_appeared_in"] = 0.0
		features["last_block_appeared_in"] = 0.0
		features["lifetime_in_blocks"] = 0.0
		features["num_timesteps_appeared_in"] = 0.0
	}

	var sentBlocks, receivedBlocks []int64
	for _, t := range sentTxs {
		if t.block > 0 {
			sentBlocks = append(sentBlocks, t.block)
		}
	}
	for _, t := range receivedTxs {
		if t.block > 0 {
			receivedBlocks = append(receivedBlocks, t.block)
		}
	}
	features["first_sent_block"] = minBlock(sentBlocks)
	features["first_received_block"] = minBlock(receivedBlocks)

	sentValues := make([]float64, 0, len(sentTxs))
	feeShares := make([]float64, 0, len(sentTxs))
	for _, t := range sentTxs {
		sentValues = append(sentValues, t.valueBtc)
		if t.valueBtc > 0 {
			feeShares = append(feeShares, t.feeBtc/t.valueBtc*100.0)
		}
	}
	receivedValues := make([]float64, 0, len(receivedTxs))
	for _, t := range receivedTxs {
		receivedValues = append(receivedValues, t.valueBtc)
	}

	addStats(features, "btc_transacted", allValues, true)
	addStats(features, "btc_sent", sentValues, true)
	addStats(features, "btc_received", receivedValues, true)
	addStats(features, "fees", allFees, true)
	addStats(features, "fees_as_share", feeShares, true)

	addIntervalStats(features, "blocks_btwn_txs", blocks)
	addIntervalStats(features, "blocks_btwn_input_txs", sentBlocks)
	addIntervalStats(features, "blocks_btwn_output_txs", receivedBlocks)

	counts := make([]float64, 0, len(counterparties))
	multiple := 0
	for _, c := range counterparties {
		counts = append(counts, float64(c))
		if c > 1 {
			multiple++
		}
	}
	features["transacted_w_address_total"] = float64(len(counterparties))
	features["num_addr_transacted_multiple"] = float64(multiple)
	addStats(features, "transacted_w_address", counts, false)

	return features
}

// resolveValueEth 将单条交易的转账额折算为 ETH。
// 定价失败的代币转账按 0 计入，不从序列中剔除。
func (l *EthFeatureLogic) resolveValueEth(tx types.NormalizedTx) float64 {
	if tx.Kind == types.TransferNative {
		wei, err := strconv.ParseFloat(tx.Value, 64)
		if err != nil {
			return 0.0
		}
		return wei / float64(params.Ether)
	}

	info := l.price.TokenInfo(tx.ContractAddress)
	raw, err := strconv.ParseFloat(tx.Value, 64)
	if err != nil {
		return 0.0
	}
	tokenAmount := raw / math.Pow(10, float64(info.Decimals))
	if tokenAmount <= 0 {
		return 0.0
	}

	ratio := l.price.TokenEthRatio(tx.ContractAddress, tx.Timestamp)
	valueEth := tokenAmount * ratio
	if valueEth > 0 {
		l.Infof("代币折算: %.4f %s * %.8f = %.8f ETH", tokenAmount, info.Symbol, ratio, valueEth)
	}
	return valueEth
}
