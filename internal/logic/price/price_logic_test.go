package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"riskscan/internal/cache"
	"riskscan/internal/config"
	"riskscan/internal/svc"

	"github.com/stretchr/testify/assert"
)

const (
	wethAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdtAddress = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	// 未收录的合约，走远程元数据与价格源
	obscureAddress = "0x1111111111111111111111111111111111111111"
)

// 2022-05-01 之内的一个时间戳
const mayTimestamp = int64(1651500000)

func newPriceTestSvcCtx(c config.Config) *svc.ServiceContext {
	return &svc.ServiceContext{
		Config:         c,
		RatioCache:     cache.NewRatioCache(),
		TokenInfoCache: cache.NewTokenInfoCache(),
	}
}

func TestMonthKeyTruncatesToCalendarMonth(t *testing.T) {
	assert.Equal(t, "2022-05-01", MonthKey(mayTimestamp))
	assert.Equal(t, "1970-01-01", MonthKey(0))
}

func TestTokenEthRatioWethIdentity(t *testing.T) {
	// 价格源完全不可达也不影响 WETH 恒等换算
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(config.Config{}))
	assert.Equal(t, 1.0, l.TokenEthRatio(wethAddress, mayTimestamp))
}

func TestTokenEthRatioStablecoinUsesMonthlyEthUsd(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "ETH", r.URL.Query().Get("fsym"))
		assert.Equal(t, "USD", r.URL.Query().Get("tsyms"))
		fmt.Fprint(w, `{"ETH":{"USD":2000}}`)
	}))
	defer server.Close()

	var c config.Config
	c.CryptoCompare = config.ApiConf{Url: server.URL}
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(c))

	// 1 USDT = 1/2000 ETH
	assert.InDelta(t, 0.0005, l.TokenEthRatio(usdtAddress, mayTimestamp), 1e-12)

	// 同月第二次解析命中缓存，不再触发远程查询
	assert.InDelta(t, 0.0005, l.TokenEthRatio(usdtAddress, mayTimestamp), 1e-12)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenEthRatioFallsThroughToDefiLlama(t *testing.T) {
	// CryptoCompare 对该符号返回 0，触发向下一级回退；ETH/USD 查询正常
	ccServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fsym") == "ETH" {
			fmt.Fprint(w, `{"ETH":{"USD":2000}}`)
			return
		}
		fmt.Fprint(w, `{"ABC":{"ETH":0}}`)
	}))
	defer ccServer.Close()

	metaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"ABC","decimals":"18"}]`)
	}))
	defer metaServer.Close()

	llamaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"coins":{"ethereum:%s":{"price":10,"symbol":"ABC"}}}`, obscureAddress)
	}))
	defer llamaServer.Close()

	var c config.Config
	c.CryptoCompare = config.ApiConf{Url: ccServer.URL}
	c.DefiLlama = config.ApiConf{Url: llamaServer.URL}
	c.Moralis.MetadataUrl = metaServer.URL
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(c))

	// 10 USD * (1/2000) ETH/USD = 0.005 ETH
	assert.InDelta(t, 0.005, l.TokenEthRatio(obscureAddress, mayTimestamp), 1e-12)
}

func TestTokenEthRatioUnpriceableReturnsZero(t *testing.T) {
	metaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"symbol":"ABC","decimals":"18"}]`)
	}))
	defer metaServer.Close()

	var c config.Config
	c.Moralis.MetadataUrl = metaServer.URL
	svcCtx := newPriceTestSvcCtx(c)
	l := NewPriceLogic(context.Background(), svcCtx)

	// 所有价格源均不可达：软失败返回 0，且不写入缓存
	assert.Equal(t, 0.0, l.TokenEthRatio(obscureAddress, mayTimestamp))
	_, cached := svcCtx.RatioCache.Get(fmt.Sprintf("ABC_%s_%s", MonthKey(mayTimestamp), obscureAddress))
	assert.False(t, cached)
}

func TestTokenInfoMemoizesMetadataFailure(t *testing.T) {
	var calls int32
	metaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer metaServer.Close()

	var c config.Config
	c.Moralis.MetadataUrl = metaServer.URL
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(c))

	info := l.TokenInfo(obscureAddress)
	assert.Equal(t, "UNKNOWN", info.Symbol)
	assert.Equal(t, 18, info.Decimals)

	// 失败结果同样记忆化，坏合约只查一次
	info = l.TokenInfo(obscureAddress)
	assert.Equal(t, "UNKNOWN", info.Symbol)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenInfoKnownTableSkipsRemoteLookup(t *testing.T) {
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(config.Config{}))

	info := l.TokenInfo("0xDAC17F958D2ee523a2206206994597C13D831ec7")
	assert.Equal(t, "USDT", info.Symbol)
	assert.Equal(t, 6, info.Decimals)
}

func TestEthBtcRatioEraFallbacks(t *testing.T) {
	// 价格源不可达时按交易所在年代退回经验常数
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(config.Config{}))

	cases := []struct {
		timestamp int64
		expected  float64
	}{
		{1451606400, 0.02},  // 2016-01-01
		{1500000000, 0.05},  // 2017-07
		{1530000000, 0.08},  // 2018-06
		{1590000000, 0.04},  // 2020-05
		{mayTimestamp, 0.067},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, l.EthBtcRatio(tc.timestamp))
	}
}

func TestEthBtcRatioCachesFetchedValue(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"ETH":{"BTC":0.055}}`)
	}))
	defer server.Close()

	var c config.Config
	c.CryptoCompare = config.ApiConf{Url: server.URL}
	l := NewPriceLogic(context.Background(), newPriceTestSvcCtx(c))

	assert.InDelta(t, 0.055, l.EthBtcRatio(mayTimestamp), 1e-12)
	assert.InDelta(t, 0.055, l.EthBtcRatio(mayTimestamp), 1e-12)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
