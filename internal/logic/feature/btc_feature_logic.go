package feature

import (
	"context"

	"riskscan/internal/constant"
	"riskscan/internal/logic/datasource"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const (
	satoshiToBtc = 100_000_000.0
	epsilon      = 1e-8
)

type BtcFeatureLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewBtcFeatureLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BtcFeatureLogic {
	return &BtcFeatureLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ExtractFeatures 拉取比特币地址交易历史并计算定序特征向量
func (l *BtcFeatureLogic) ExtractFeatures(address string) (*types.ExtractFeaturesResp, error) {
	txs, err := datasource.NewBtcDatasourceLogic(l.ctx, l.svcCtx).FetchNormalized(address)
	if err != nil {
		return nil, err
	}

	features := l.ComputeFeatures(address, txs)
	return &types.ExtractFeaturesResp{
		Address:          address,
		Network:          string(constant.NetworkBitcoin),
		FeatureNames:     BtcFeatureNames,
		Features:         BuildVector(BtcFeatureNames, features),
		TransactionCount: len(txs),
	}, nil
}

// ComputeFeatures 从归一化交易构建特征表（UTXO 形态）
func (l *BtcFeatureLogic) ComputeFeatures(address string, txs []types.NormalizedTx) map[string]float64 {
	features := make(map[string]float64)

	var blockHeights, sentBlocks, receivedBlocks []int64
	var sentValues, receivedValues, allValues, allFees []float64
	interactionCounts := make(map[string]int)

	for _, tx := range txs {
		if tx.BlockHeight > 0 {
			blockHeights = append(blockHeights, tx.BlockHeight)
		}
		allFees = append(allFees, tx.Fee)

		isSender := false
		var totalSentSatoshi int64
		for _, input := range tx.Inputs {
			if input.Address == address {
				isSender = true
				totalSentSatoshi += input.Value
			} else if input.Address != "" {
				interactionCounts[input.Address]++
			}
		}

		var totalReceivedSatoshi int64
		for _, output := range tx.Outputs {
			if output.Address == address {
				totalReceivedSatoshi += output.Value
			} else if output.Address != "" {
				interactionCounts[output.Address]++
			}
		}

		if isSender {
			sentBtc := float64(totalSentSatoshi) / satoshiToBtc
			sentValues = append(sentValues, sentBtc)
			allValues = append(allValues, sentBtc)
			if tx.BlockHeight > 0 {
				sentBlocks = append(sentBlocks, tx.BlockHeight)
			}
		}

		if totalReceivedSatoshi > 0 {
			receivedBtc := float64(totalReceivedSatoshi) / satoshiToBtc
			receivedValues = append(receivedValues, receivedBtc)
			allValues = append(allValues, receivedBtc)
			if tx.BlockHeight > 0 {
				receivedBlocks = append(receivedBlocks, tx.BlockHeight)
			}
		}
	}

	features["num_txs_as_sender"] = float64(len(sentValues))
	features["num_txs_as_receiver"] = float64(len(receivedValues))
	features["total_txs"] = float64(len(txs))

	if len(blockHeights) > 0 {
		first := minBlock(blockHeights)
		last := maxBlock(blockHeights)
		features["first_block_appeared_in"] = first
		features["last_block_appeared_in"] = last
		features["lifetime_in_blocks"] = last - first
		features["num_timesteps_appeared_in"] = uniqueCount(blockHeights)
	}
	if len(sentBlocks) > 0 {
		features["first_sent_block"] = minBlock(sentBlocks)
	}
	if len(receivedBlocks) > 0 {
		features["first_received_block"] = minBlock(receivedBlocks)
	}

	addStats(features, "btc_transacted", allValues, true)
	addStats(features, "btc_sent", sentValues, true)
	addStats(features, "btc_received", receivedValues, true)
	addStats(features, "fees", allFees, true)

	// 手续费占交易额比例，无对应交易额时记 0
	feeShares := make([]float64, 0, len(allFees))
	for i, fee := range allFees {
		share := 0.0
		if i < len(allValues) && allValues[i] > 0 {
			share = fee / allValues[i] * 100.0
		}
		feeShares = append(feeShares, share)
	}
	addStats(features, "fees_as_share", feeShares, true)

	addIntervalStats(features, "blocks_btwn_txs", blockHeights)
	addIntervalStats(features, "blocks_btwn_input_txs", sentBlocks)
	addIntervalStats(features, "blocks_btwn_output_txs", receivedBlocks)

	counts := make([]float64, 0, len(interactionCounts))
	multiple := 0
	for _, c := range interactionCounts {
		counts = append(counts, float64(c))
		if c > 1 {
			multiple++
		}
	}
	addStats(features, "transacted_w_address", counts, true)
	features["num_addr_transacted_multiple"] = float64(multiple)

	features["Time step"] = uniqueCount(blockHeights)

	addDerivedFeatures(features)
	return features
}

// addDerivedFeatures 计算组合型模式特征，分母统一加 epsilon 防零
func addDerivedFeatures(features map[string]float64) {
	get := func(name string) float64 { return features[name] }

	features["partner_transaction_ratio"] = get("transacted_w_address_total") / (get("total_txs") + epsilon)
	features["activity_density"] = get("total_txs") / (get("lifetime_in_blocks") + epsilon)
	features["transaction_size_variance"] = (get("btc_transacted_max") - get("btc_transacted_min")) / (get("btc_transacted_mean") + epsilon)
	features["flow_imbalance"] = (get("btc_sent_total") - get("btc_received_total")) / (get("btc_transacted_total") + epsilon)
	features["temporal_spread"] = (get("last_block_appeared_in") - get("first_block_appeared_in")) / (get("num_timesteps_appeared_in") + epsilon)
	features["fee_percentile"] = get("fees_total") / (get("btc_transacted_total") + epsilon)
	features["interaction_intensity"] = get("num_addr_transacted_multiple") / (get("transacted_w_address_total") + epsilon)
	features["value_per_transaction"] = get("btc_transacted_total") / (get("total_txs") + epsilon)
	features["burst_activity"] = get("total_txs") * features["activity_density"]
	features["mixing_intensity"] = features["partner_transaction_ratio"] * features["interaction_intensity"]
}
