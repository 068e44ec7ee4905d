package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

// stablecoins 稳定币白名单，直接走 ETH/USD 月度价换算
var stablecoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
}

type PriceLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	client *http.Client
	logx.Logger
}

func NewPriceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PriceLogic {
	return &PriceLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		client: &http.Client{Timeout: 30 * time.Second},
		Logger: logx.WithContext(ctx),
	}
}

// MonthKey 将时间戳截断到所属日历月（UTC），价格缓存按月分桶
func MonthKey(timestamp int64) string {
	t := time.Unix(timestamp, 0).UTC()
	return fmt.Sprintf("%04d-%02d-01", t.Year(), int(t.Month()))
}

func monthStartUnix(timestamp int64) int64 {
	t := time.Unix(timestamp, 0).UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
}

// TokenEthRatio 解析一单位代币折算为 ETH 的比率（月度粒度）。
// 逐层回退：WETH 恒等 -> 稳定币白名单 -> CryptoCompare 符号直查
// -> DeFiLlama USD 锚定 -> Moralis USD 锚定。
// 全部失败返回 0.0，调用方应视为"无法定价"而非真实零值。
func (l *PriceLogic) TokenEthRatio(tokenAddress string, timestamp int64) float64 {
	info := l.TokenInfo(tokenAddress)

	// Tier 0: 链上包装原生币恒等于 1
	if info.Symbol == "WETH" {
		return 1.0
	}

	cacheKey := fmt.Sprintf("%s_%s_%s", info.Symbol, MonthKey(timestamp), strings.ToLower(tokenAddress))
	if ratio, ok := l.svcCtx.RatioCache.Get(cacheKey); ok {
		return ratio
	}

	var ratio float64
	if stablecoins[info.Symbol] {
		// Tier 1: 稳定币按 1 USD 计，走 ETH/USD 月度价
		ratio = l.EthPerUsd(timestamp)
	} else {
		ratio = l.fetchTokenRatioFromApis(info.Symbol, tokenAddress, timestamp)
	}

	if ratio > 0 {
		l.svcCtx.RatioCache.Set(cacheKey, ratio)
	} else {
		l.Infof("⚠️ 代币 %s (%s) 在 %s 无法定价，按 0 处理", info.Symbol, tokenAddress, MonthKey(timestamp))
	}
	return ratio
}

// fetchTokenRatioFromApis 依次尝试 Tier 2-4，取第一个正值
func (l *PriceLogic) fetchTokenRatioFromApis(symbol, tokenAddress string, timestamp int64) float64 {
	// Tier 2: CryptoCompare SYMBOL -> ETH 月初价
	if symbol != "" && symbol != "UNKNOWN" {
		if price, err := l.cryptoCompareHistorical(symbol, "ETH", monthStartUnix(timestamp)); err == nil && price > 0 {
			return price
		}
	}

	// Tier 3: DeFiLlama USD 价，经 ETH/USD 锚定换算
	if price := l.fetchFromDefiLlama(tokenAddress, timestamp); price > 0 {
		return price
	}

	// Tier 4: Moralis USD 价，同样经 ETH/USD 换算
	if price := l.fetchFromMoralisPrice(tokenAddress, timestamp); price > 0 {
		return price
	}

	l.Infof("❌ 所有价格源均未能解析 %s", symbol)
	return 0.0
}

// EthPerUsd 返回 1 USD 折算的 ETH 数量，ETH/USD 月度价缓存于 ETH_USD_<月份>
func (l *PriceLogic) EthPerUsd(timestamp int64) float64 {
	cacheKey := "ETH_USD_" + MonthKey(timestamp)
	if usd, ok := l.svcCtx.RatioCache.Get(cacheKey); ok {
		if usd > 0 {
			return 1.0 / usd
		}
		return 0.0
	}

	usd, err := l.cryptoCompareHistorical("ETH", "USD", monthStartUnix(timestamp))
	if err != nil {
		l.Infof("⚠️ ETH/USD 价格拉取失败，本次换算将失败: %v", err)
		return 0.0
	}
	l.svcCtx.RatioCache.Set(cacheKey, usd)
	if usd > 0 {
		return 1.0 / usd
	}
	return 0.0
}

// EthBtcRatio 返回月度 ETH/BTC 比率，拉取失败时退回按年代的经验常数
func (l *PriceLogic) EthBtcRatio(timestamp int64) float64 {
	cacheKey := "ETH_BTC_" + MonthKey(timestamp)
	if ratio, ok := l.svcCtx.RatioCache.Get(cacheKey); ok {
		return ratio
	}

	if ratio, err := l.cryptoCompareHistorical("ETH", "BTC", monthStartUnix(timestamp)); err == nil && ratio > 0 {
		l.svcCtx.RatioCache.Set(cacheKey, ratio)
		return ratio
	}

	year := time.Unix(timestamp, 0).UTC().Year()
	var fallback float64
	switch {
	case year <= 2016:
		fallback = 0.02
	case year <= 2017:
		fallback = 0.05
	case year <= 2018:
		fallback = 0.08
	case year <= 2020:
		fallback = 0.04
	default:
		fallback = 0.067
	}
	l.Infof("⚠️ ETH/BTC 价格拉取失败，使用经验比率: %v", fallback)
	return fallback
}

// cryptoCompareHistorical 查询 fsym 在指定时间点折算 tsym 的历史价
func (l *PriceLogic) cryptoCompareHistorical(fsym, tsym string, timestamp int64) (float64, error) {
	query := url.Values{}
	query.Set("fsym", fsym)
	query.Set("tsyms", tsym)
	query.Set("ts", strconv.FormatInt(timestamp, 10))
	query.Set("api_key", l.svcCtx.Config.CryptoCompare.ApiKey)
	apiURL := fmt.Sprintf("%s?%s", l.svcCtx.Config.CryptoCompare.Url, query.Encode())

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, err
	}
	return data[fsym][tsym], nil
}

// fetchFromDefiLlama 拉取代币在精确时间戳的 USD 价并换算为 ETH，失败返回 0
func (l *PriceLogic) fetchFromDefiLlama(tokenAddress string, timestamp int64) float64 {
	coinId := "ethereum:" + tokenAddress
	apiURL := fmt.Sprintf("%s/%d/%s", l.svcCtx.Config.DefiLlama.Url, timestamp, coinId)

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return 0.0
	}
	req.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return 0.0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0.0
	}

	var data types.DefiLlamaPriceResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0.0
	}
	coin, ok := data.Coins[coinId]
	if !ok {
		return 0.0
	}

	ethPerUsd := l.EthPerUsd(timestamp)
	if ethPerUsd <= 0 {
		return 0.0
	}
	return coin.Price * ethPerUsd
}

// fetchFromMoralisPrice 按日期向 Moralis 查询代币 USD 价并换算为 ETH，失败返回 0
func (l *PriceLogic) fetchFromMoralisPrice(tokenAddress string, timestamp int64) float64 {
	toDate := time.Unix(timestamp, 0).UTC().Format(time.RFC3339)
	apiURL := fmt.Sprintf("%s/%s/price?chain=eth&to_date=%s",
		l.svcCtx.Config.Moralis.PriceUrl, tokenAddress, url.QueryEscape(toDate))

	req, err := http.NewRequestWithContext(l.ctx, "GET", apiURL, nil)
	if err != nil {
		return 0.0
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", l.svcCtx.Config.Moralis.ApiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return 0.0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0.0
	}

	var data types.MoralisPriceResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0.0
	}

	ethPerUsd := l.EthPerUsd(timestamp)
	if ethPerUsd <= 0 {
		return 0.0
	}
	return data.UsdPrice * ethPerUsd
}
