package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"riskscan/internal/errs"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/ethereum/go-ethereum/params"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	// MaxTransactionsPerAddress 单地址最多分析的交易条数，界定最坏情况下的拉取时长
	MaxTransactionsPerAddress = 100
	// Etherscan 单页最大返回条数，返回不足一页即代表历史拉取完毕
	etherscanMaxRecords = 10000
)

type EthDatasourceLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	client *http.Client
	logx.Logger
}

func NewEthDatasourceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EthDatasourceLogic {
	return &EthDatasourceLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		client: &http.Client{Timeout: 30 * time.Second},
		Logger: logx.WithContext(ctx),
	}
}

// FetchNormalized 拉取地址的原生转账与 ERC20 转账两路历史，
// 按交易哈希去重合并后归一化为 NormalizedTx，时间升序，最多 100 条。
func (l *EthDatasourceLogic) FetchNormalized(address string) ([]types.NormalizedTx, error) {
	address = strings.ToLower(address)

	// 1. 拉取原生转账流
	ethTxs, err := l.fetchAllPages("txlist", address)
	if err != nil {
		return nil, err
	}

	// 2. 拉取 ERC20 转账流
	erc20Txs, err := l.fetchAllPages("tokentx", address)
	if err != nil {
		return nil, err
	}

	// 3. 合并：ERC20 转账继承父交易的 gas 信息，父交易本身不再重复计入
	ethTxByHash := make(map[string]types.EtherscanTx, len(ethTxs))
	for _, tx := range ethTxs {
		ethTxByHash[tx.Hash] = tx
	}

	erc20ParentHashes := make(map[string]bool, len(erc20Txs))
	merged := make([]types.NormalizedTx, 0, len(ethTxs)+len(erc20Txs))

	for _, tx := range erc20Txs {
		erc20ParentHashes[tx.Hash] = true
		if parent, ok := ethTxByHash[tx.Hash]; ok {
			tx.GasUsed = parent.GasUsed
			tx.GasPrice = parent.GasPrice
		}
		merged = append(merged, l.normalize(tx, types.TransferToken))
	}
	for _, tx := range ethTxs {
		if !erc20ParentHashes[tx.Hash] {
			merged = append(merged, l.normalize(tx, types.TransferNative))
		}
	}

	// 4. 时间升序排序
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	// 5. 截断到硬上限，保留最近的交易
	if len(merged) > MaxTransactionsPerAddress {
		l.Infof("⚠️ 地址 %s 共 %d 条交易，截断至最近 %d 条", address, len(merged), MaxTransactionsPerAddress)
		merged = merged[len(merged)-MaxTransactionsPerAddress:]
	}

	l.Infof("地址 %s 归一化完成，共 %d 条交易", address, len(merged))
	return merged, nil
}

// fetchAllPages 以 startblock 为游标翻页，直到返回不足一页或达到硬上限
func (l *EthDatasourceLogic) fetchAllPages(action, address string) ([]types.EtherscanTx, error) {
	var all []types.EtherscanTx
	startBlock := int64(0)

	for {
		page, err := l.fetchPage(action, address, startBlock)
		if err != nil {
			// 翻页中途失败则整体失败，不静默返回部分结果
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(all) >= MaxTransactionsPerAddress || len(page) < etherscanMaxRecords {
			break
		}
		lastBlock, err := strconv.ParseInt(page[len(page)-1].BlockNumber, 10, 64)
		if err != nil || lastBlock == 0 {
			break
		}
		startBlock = lastBlock + 1
	}
	return all, nil
}

func (l *EthDatasourceLogic) fetchPage(action, address string, startBlock int64) ([]types.EtherscanTx, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", action)
	query.Set("address", address)
	query.Set("startblock", strconv.FormatInt(startBlock, 10))
	query.Set("endblock", "99999999")
	query.Set("sort", "asc")
	query.Set("apikey", l.svcCtx.Config.Etherscan.ApiKey)
	apiURL := fmt.Sprintf("%s?%s", l.svcCtx.Config.Etherscan.Url, query.Encode())

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, errs.NewDataSource("etherscan", "fetch-transactions", address, err)
	}
	req.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errs.NewDataSource("etherscan", "fetch-transactions", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		l.Errorf("Etherscan HTTP %d: %s", resp.StatusCode, string(body))
		return nil, errs.NewDataSource("etherscan", "fetch-transactions", address,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var listResp types.EtherscanListResp
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, errs.NewDataSource("etherscan", "decode-response", address, err)
	}

	if listResp.Status == "1" {
		var txs []types.EtherscanTx
		if err := json.Unmarshal(listResp.Result, &txs); err != nil {
			return nil, errs.NewDataSource("etherscan", "decode-response", address, err)
		}
		return txs, nil
	}

	// "No transactions found" 不是错误，代表该地址没有此类历史
	if strings.Contains(listResp.Message, "No transactions found") {
		return nil, nil
	}

	return nil, errs.NewDataSource("etherscan", "fetch-transactions", address,
		fmt.Errorf("api error: %s", listResp.Message))
}

// normalize 将 Etherscan 原始交易映射为链无关结构，gas 费折算为 ETH
func (l *EthDatasourceLogic) normalize(tx types.EtherscanTx, kind types.TransferKind) types.NormalizedTx {
	timestamp, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)
	blockHeight, _ := strconv.ParseInt(tx.BlockNumber, 10, 64)
	gasUsed, _ := strconv.ParseFloat(tx.GasUsed, 64)
	gasPrice, _ := strconv.ParseFloat(tx.GasPrice, 64)

	normalized := types.NormalizedTx{
		Hash:        tx.Hash,
		BlockHeight: blockHeight,
		Timestamp:   timestamp,
		Fee:         gasUsed * gasPrice / float64(params.Ether),
		Kind:        kind,
		From:        strings.ToLower(tx.From),
		To:          strings.ToLower(tx.To),
		Value:       tx.Value,
	}
	if kind == types.TransferToken {
		normalized.ContractAddress = strings.ToLower(tx.ContractAddress)
	}
	return normalized
}
