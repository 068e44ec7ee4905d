package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"riskscan/internal/cache"
	"riskscan/internal/config"
	"riskscan/internal/errs"
	"riskscan/internal/model"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/stretchr/testify/assert"
)

const (
	btcTestAddress    = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	solanaTestAddress = "So11111111111111111111111111111111111111112"
)

// fakeHistoryDao 记录插入的历史，insertErr 非空时模拟落库失败
type fakeHistoryDao struct {
	inserted  []*model.AnalysisHistories
	insertErr error
}

func (d *fakeHistoryDao) Insert(ctx context.Context, data *model.AnalysisHistories) error {
	if d.insertErr != nil {
		return d.insertErr
	}
	d.inserted = append(d.inserted, data)
	return nil
}

func (d *fakeHistoryDao) FindRecent(ctx context.Context, limit int) ([]*model.AnalysisHistories, error) {
	if limit < len(d.inserted) {
		return d.inserted[:limit], nil
	}
	return d.inserted, nil
}

func (d *fakeHistoryDao) FindByAddress(ctx context.Context, address string) ([]*model.AnalysisHistories, error) {
	var matched []*model.AnalysisHistories
	for _, r := range d.inserted {
		if r.Address == address {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

type analyzeFixture struct {
	svcCtx     *svc.ServiceContext
	dao        *fakeHistoryDao
	modelCalls *int32
}

// newAnalyzeFixture 搭建一套假依赖：社区 oracle、评分模型、mempool 数据源
func newAnalyzeFixture(t *testing.T, communitySafe, modelRansomware bool, probability float64) *analyzeFixture {
	t.Helper()

	communityServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze_address", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["address"])
		json.NewEncoder(w).Encode(types.CommunityCheckResp{IsSafe: communitySafe})
	}))
	t.Cleanup(communityServer.Close)

	var modelCalls int32
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&modelCalls, 1)
		assert.Equal(t, "/score", r.URL.Path)
		var req types.ModelScoreReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, len(req.FeatureNames), len(req.Features))
		json.NewEncoder(w).Encode(types.ModelScoreResp{
			IsRansomware:          modelRansomware,
			RansomwareProbability: probability,
			Confidence:            0.92,
			TransactionsAnalyzed:  req.TransactionCount,
			ChainType:             req.Network,
		})
	}))
	t.Cleanup(modelServer.Close)

	mempoolServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	t.Cleanup(mempoolServer.Close)

	var c config.Config
	c.CommunityOracle.Url = communityServer.URL
	c.ScoringModel.Url = modelServer.URL
	c.Mempool = config.ApiConf{Url: mempoolServer.URL}

	dao := &fakeHistoryDao{}
	return &analyzeFixture{
		svcCtx: &svc.ServiceContext{
			Config:         c,
			HistoryDao:     dao,
			RatioCache:     cache.NewRatioCache(),
			TokenInfoCache: cache.NewTokenInfoCache(),
		},
		dao:        dao,
		modelCalls: &modelCalls,
	}
}

func TestAnalyzeAddressRejectsEmptyAddress(t *testing.T) {
	l := NewAnalyzeLogic(context.Background(), &svc.ServiceContext{})

	for _, address := range []string{"", "   ", "\t\n"} {
		_, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: address})
		var invalidErr *errs.InvalidAddressError
		assert.True(t, errors.As(err, &invalidErr), "address %q", address)
	}
}

func TestAnalyzeAddressCommunityUnsafeIsTerminal(t *testing.T) {
	f := newAnalyzeFixture(t, false, false, 0)
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	verdict, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: btcTestAddress})

	assert.NoError(t, err)
	assert.False(t, verdict.IsSafe)
	assert.Equal(t, types.SourceCommunity, verdict.Source)
	assert.Equal(t, 75, verdict.Confidence)
	assert.Equal(t, types.RiskLevelHigh, verdict.RiskLevel)

	// 社区标记后不再走模型评分
	assert.Equal(t, int32(0), atomic.LoadInt32(f.modelCalls))

	// 结论已落库
	assert.Len(t, f.dao.inserted, 1)
	assert.Equal(t, btcTestAddress, f.dao.inserted[0].Address)
	assert.Equal(t, types.SourceCommunity, f.dao.inserted[0].Source)
	assert.NotEmpty(t, f.dao.inserted[0].AnalysisId)
}

func TestAnalyzeAddressBothStagesCleanFusesSources(t *testing.T) {
	f := newAnalyzeFixture(t, true, false, 0.1)
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	verdict, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: btcTestAddress})

	assert.NoError(t, err)
	assert.True(t, verdict.IsSafe)
	assert.Equal(t, types.SourceCommunityAndModel, verdict.Source)
	assert.Equal(t, 92, verdict.Confidence)
	assert.Equal(t, types.RiskLevelLow, verdict.RiskLevel)
	assert.Equal(t, "Bitcoin", verdict.Network)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.modelCalls))
	assert.Len(t, f.dao.inserted, 1)
}

func TestAnalyzeAddressModelUnsafeOverridesCommunity(t *testing.T) {
	f := newAnalyzeFixture(t, true, true, 0.9)
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	verdict, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: btcTestAddress})

	assert.NoError(t, err)
	assert.False(t, verdict.IsSafe)
	assert.Equal(t, types.SourceModel, verdict.Source)
	assert.Equal(t, types.RiskLevelHigh, verdict.RiskLevel)
}

func TestAnalyzeAddressMediumRiskBand(t *testing.T) {
	f := newAnalyzeFixture(t, true, true, 0.5)
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	verdict, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: btcTestAddress})

	assert.NoError(t, err)
	assert.Equal(t, types.RiskLevelMedium, verdict.RiskLevel)
}

func TestAnalyzeAddressUnsupportedNetworkAfterCommunityPass(t *testing.T) {
	f := newAnalyzeFixture(t, true, false, 0)
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	_, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: solanaTestAddress})

	var unsupportedErr *errs.UnsupportedNetworkError
	assert.True(t, errors.As(err, &unsupportedErr))
	assert.Equal(t, int32(0), atomic.LoadInt32(f.modelCalls))
	assert.Empty(t, f.dao.inserted)
}

func TestAnalyzeAddressPersistenceFailureDoesNotChangeVerdict(t *testing.T) {
	f := newAnalyzeFixture(t, true, false, 0.1)
	f.dao.insertErr = errors.New("db is down")
	l := NewAnalyzeLogic(context.Background(), f.svcCtx)

	verdict, err := l.AnalyzeAddress(&types.AnalyzeAddressReq{Address: btcTestAddress})

	assert.NoError(t, err)
	assert.True(t, verdict.IsSafe)
	assert.Equal(t, types.SourceCommunityAndModel, verdict.Source)
}

func TestListHistoryClampsLimitAndMapsRecords(t *testing.T) {
	dao := &fakeHistoryDao{}
	for i := 0; i < 3; i++ {
		dao.inserted = append(dao.inserted, &model.AnalysisHistories{
			AnalysisId: fmt.Sprintf("id-%d", i),
			Address:    btcTestAddress,
			Network:    "Bitcoin",
			IsSafe:     true,
			Confidence: 85,
			RiskLevel:  types.RiskLevelLow,
			Source:     types.SourceCommunityAndModel,
			CreatedAt:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}
	l := NewAnalyzeLogic(context.Background(), &svc.ServiceContext{HistoryDao: dao})

	resp, err := l.ListHistory(&types.HistoryListReq{Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "id-0", resp.Records[0].AnalysisId)
	assert.Equal(t, "2024-01-01T00:00:00Z", resp.Records[0].CreatedAt)

	// 越界 limit 回退到默认 20
	resp, err = l.ListHistory(&types.HistoryListReq{Limit: 0})
	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Total)

	resp, err = l.ListHistory(&types.HistoryListReq{Limit: 500})
	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
}
