package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"riskscan/internal/errs"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const satoshiPerBtc = 100_000_000.0

type BtcDatasourceLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	client *http.Client
	logx.Logger
}

func NewBtcDatasourceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BtcDatasourceLogic {
	return &BtcDatasourceLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		client: &http.Client{Timeout: 30 * time.Second},
		Logger: logx.WithContext(ctx),
	}
}

// FetchNormalized 从 mempool.space 拉取地址交易并适配为 NormalizedTx。
// 数据源按最新在前返回，截断保留最近 100 条后再按区块升序排列。
func (l *BtcDatasourceLogic) FetchNormalized(address string) ([]types.NormalizedTx, error) {
	apiURL := fmt.Sprintf("%s/address/%s/txs", l.svcCtx.Config.Mempool.Url, address)

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, errs.NewDataSource("mempool", "fetch-transactions", address, err)
	}
	req.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errs.NewDataSource("mempool", "fetch-transactions", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		l.Errorf("mempool.space HTTP %d: %s", resp.StatusCode, string(body))
		return nil, errs.NewDataSource("mempool", "fetch-transactions", address,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var rawTxs []types.MempoolTx
	if err := json.NewDecoder(resp.Body).Decode(&rawTxs); err != nil {
		return nil, errs.NewDataSource("mempool", "decode-response", address, err)
	}

	if len(rawTxs) > MaxTransactionsPerAddress {
		l.Infof("⚠️ 地址 %s 共 %d 条交易，截断至最近 %d 条", address, len(rawTxs), MaxTransactionsPerAddress)
		rawTxs = rawTxs[:MaxTransactionsPerAddress]
	}

	normalized := make([]types.NormalizedTx, 0, len(rawTxs))
	for _, tx := range rawTxs {
		normalized = append(normalized, adaptMempoolTx(tx))
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].BlockHeight < normalized[j].BlockHeight
	})

	l.Infof("地址 %s 归一化完成，共 %d 条交易", address, len(normalized))
	return normalized, nil
}

// adaptMempoolTx 将 mempool.space 的 vin/vout 结构映射为链无关的 inputs/outputs
func adaptMempoolTx(tx types.MempoolTx) types.NormalizedTx {
	inputs := make([]types.TxEndpoint, 0, len(tx.Vin))
	for _, vin := range tx.Vin {
		inputs = append(inputs, types.TxEndpoint{
			Address: vin.Prevout.ScriptpubkeyAddress,
			Value:   vin.Prevout.Value,
		})
	}

	outputs := make([]types.TxEndpoint, 0, len(tx.Vout))
	for _, vout := range tx.Vout {
		outputs = append(outputs, types.TxEndpoint{
			Address: vout.ScriptpubkeyAddress,
			Value:   vout.Value,
		})
	}

	return types.NormalizedTx{
		Hash:        tx.Txid,
		BlockHeight: tx.Status.BlockHeight,
		Timestamp:   tx.Status.BlockTime,
		Fee:         float64(tx.Fee) / satoshiPerBtc,
		Kind:        types.TransferNative,
		Inputs:      inputs,
		Outputs:     outputs,
	}
}
