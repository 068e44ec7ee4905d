package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"riskscan/internal/config"
	"riskscan/internal/errs"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/stretchr/testify/assert"
)

func newBtcTestSvcCtx(mempoolURL string) *svc.ServiceContext {
	var c config.Config
	c.Mempool = config.ApiConf{Url: mempoolURL}
	return &svc.ServiceContext{Config: c}
}

func TestBtcFetchNormalizedAdaptsUtxoShape(t *testing.T) {
	// mempool.space 返回最新在前，这里 t2 (块 800100) 在 t1 (块 800000) 之前
	payload := `[
		{"txid":"t2","fee":2000,
		 "status":{"confirmed":true,"block_height":800100,"block_time":1700001000},
		 "vin":[{"prevout":{"scriptpubkey_address":"bc1qother","value":60000000}}],
		 "vout":[{"scriptpubkey_address":"bc1qtarget","value":50000000}]},
		{"txid":"t1","fee":5000,
		 "status":{"confirmed":true,"block_height":800000,"block_time":1700000000},
		 "vin":[{"prevout":{"scriptpubkey_address":"bc1qtarget","value":100000000}}],
		 "vout":[{"scriptpubkey_address":"bc1qother","value":99995000}]}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address/bc1qtarget/txs", r.URL.Path)
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	l := NewBtcDatasourceLogic(context.Background(), newBtcTestSvcCtx(server.URL))
	normalized, err := l.FetchNormalized("bc1qtarget")

	assert.NoError(t, err)
	assert.Len(t, normalized, 2)

	// 适配后按区块升序
	assert.Equal(t, "t1", normalized[0].Hash)
	assert.Equal(t, "t2", normalized[1].Hash)

	first := normalized[0]
	assert.Equal(t, int64(800000), first.BlockHeight)
	assert.Equal(t, int64(1700000000), first.Timestamp)
	assert.InDelta(t, 0.00005, first.Fee, 1e-12)
	assert.Equal(t, types.TransferNative, first.Kind)
	assert.Equal(t, []types.TxEndpoint{{Address: "bc1qtarget", Value: 100000000}}, first.Inputs)
	assert.Equal(t, []types.TxEndpoint{{Address: "bc1qother", Value: 99995000}}, first.Outputs)
}

func TestBtcFetchNormalizedCapsAtMaximum(t *testing.T) {
	body := "["
	for i := 0; i < 120; i++ {
		if i > 0 {
			body += ","
		}
		// 最新在前：索引越小区块越高
		body += fmt.Sprintf(`{"txid":"t%d","fee":1000,"status":{"confirmed":true,"block_height":%d,"block_time":%d},"vin":[],"vout":[]}`,
			i, 800200-i, 1700002000-int64(i))
	}
	body += "]"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	l := NewBtcDatasourceLogic(context.Background(), newBtcTestSvcCtx(server.URL))
	normalized, err := l.FetchNormalized("bc1qtarget")

	assert.NoError(t, err)
	assert.Len(t, normalized, MaxTransactionsPerAddress)
	// 保留最近 100 条（t0..t99），升序后最老的是 t99
	assert.Equal(t, "t99", normalized[0].Hash)
	assert.Equal(t, "t0", normalized[len(normalized)-1].Hash)
}

func TestBtcFetchNormalizedHttpErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	l := NewBtcDatasourceLogic(context.Background(), newBtcTestSvcCtx(server.URL))
	_, err := l.FetchNormalized("bc1qtarget")

	var dsErr *errs.DataSourceError
	assert.True(t, errors.As(err, &dsErr))
	assert.Equal(t, "mempool", dsErr.Source)
}

func TestBtcFetchNormalizedEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	l := NewBtcDatasourceLogic(context.Background(), newBtcTestSvcCtx(server.URL))
	normalized, err := l.FetchNormalized("bc1qtarget")

	assert.NoError(t, err)
	assert.Empty(t, normalized)
}
