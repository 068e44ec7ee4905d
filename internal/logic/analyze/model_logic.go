package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"riskscan/internal/errs"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

// ModelLogic 封装对外部评分模型服务的调用
type ModelLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	client *http.Client
	logx.Logger
}

func NewModelLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ModelLogic {
	return &ModelLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		client: &http.Client{Timeout: 30 * time.Second},
		Logger: logx.WithContext(ctx),
	}
}

// Score 将特征向量提交给评分模型，返回勒索概率判定
func (l *ModelLogic) Score(req *types.ModelScoreReq) (*types.ModelScoreResp, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errs.NewDataSource("scoring-model", "model-score", req.Address, err)
	}

	apiURL := l.svcCtx.Config.ScoringModel.Url + "/score"
	httpReq, err := http.NewRequestWithContext(l.ctx, "POST", apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.NewDataSource("scoring-model", "model-score", req.Address, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, errs.NewDataSource("scoring-model", "model-score", req.Address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		l.Errorf("评分模型 HTTP %d: %s", resp.StatusCode, string(body))
		return nil, errs.NewDataSource("scoring-model", "model-score", req.Address,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result types.ModelScoreResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.NewDataSource("scoring-model", "decode-response", req.Address, err)
	}
	if result.Error != "" {
		return nil, errs.NewDataSource("scoring-model", "model-score", req.Address,
			fmt.Errorf("model error: %s", result.Error))
	}

	l.Infof("模型评分完成 for %s: is_ransomware=%v probability=%.4f",
		req.Address, result.IsRansomware, result.RansomwareProbability)
	return &result, nil
}
