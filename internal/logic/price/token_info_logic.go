package price

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"riskscan/internal/types"
)

// knownTokens 常见合约的元数据硬编码表，命中则无需远程查询
var knownTokens = map[string]types.TokenInfo{
	"0xdac17f958d2ee523a2206206994597c13d831ec7": {Symbol: "USDT", Decimals: 6},
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {Symbol: "USDC", Decimals: 6},
	"0x6b175474e89094c44da98b954eedeac495271d0f": {Symbol: "DAI", Decimals: 18},
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": {Symbol: "WETH", Decimals: 18},
	"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": {Symbol: "WBTC", Decimals: 8},
}

var unknownToken = types.TokenInfo{Symbol: "UNKNOWN", Decimals: 18}

// TokenInfo 解析代币元数据：硬编码表 -> Moralis metadata API。
// 解析失败也写入 UNKNOWN/18 缓存，避免对坏合约反复远程查询。
func (l *PriceLogic) TokenInfo(tokenAddress string) types.TokenInfo {
	lower := strings.ToLower(tokenAddress)
	if info, ok := l.svcCtx.TokenInfoCache.Get(lower); ok {
		return info
	}

	if info, ok := knownTokens[lower]; ok {
		l.svcCtx.TokenInfoCache.Set(lower, info)
		return info
	}

	info, err := l.fetchTokenMetadata(lower)
	if err != nil {
		l.Errorf("Moralis 元数据查询失败 for %s: %v", lower, err)
		info = unknownToken
	}
	l.svcCtx.TokenInfoCache.Set(lower, info)
	return info
}

func (l *PriceLogic) fetchTokenMetadata(tokenAddress string) (types.TokenInfo, error) {
	apiURL := fmt.Sprintf("%s?chain=eth&addresses=%s", l.svcCtx.Config.Moralis.MetadataUrl, tokenAddress)

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return types.TokenInfo{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", l.svcCtx.Config.Moralis.ApiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return types.TokenInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.TokenInfo{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var metadata []types.MoralisTokenMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return types.TokenInfo{}, err
	}
	if len(metadata) == 0 {
		return unknownToken, nil
	}

	info := types.TokenInfo{Symbol: "UNKNOWN", Decimals: 18}
	if metadata[0].Symbol != "" {
		info.Symbol = strings.ToUpper(metadata[0].Symbol)
	}
	if decimals, err := strconv.Atoi(metadata[0].Decimals); err == nil && decimals > 0 {
		info.Decimals = decimals
	}
	return info, nil
}
