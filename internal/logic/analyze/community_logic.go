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

// CommunityLogic 封装对社区举报 oracle 的调用
type CommunityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	client *http.Client
	logx.Logger
}

func NewCommunityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CommunityLogic {
	return &CommunityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		client: &http.Client{Timeout: 30 * time.Second},
		Logger: logx.WithContext(ctx),
	}
}

// Check 查询地址是否被社区标记为不安全
func (l *CommunityLogic) Check(address string) (*types.CommunityCheckResp, error) {
	payload, err := json.Marshal(map[string]string{"address": address})
	if err != nil {
		return nil, errs.NewDataSource("community-oracle", "community-check", address, err)
	}

	apiURL := l.svcCtx.Config.CommunityOracle.Url + "/analyze_address"
	req, err := http.NewRequestWithContext(l.ctx, "POST", apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.NewDataSource("community-oracle", "community-check", address, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "riskscan/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errs.NewDataSource("community-oracle", "community-check", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		l.Errorf("社区 oracle HTTP %d: %s", resp.StatusCode, string(body))
		return nil, errs.NewDataSource("community-oracle", "community-check", address,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result types.CommunityCheckResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.NewDataSource("community-oracle", "decode-response", address, err)
	}
	if result.Error != "" {
		return nil, errs.NewDataSource("community-oracle", "community-check", address,
			fmt.Errorf("oracle error: %s", result.Error))
	}

	l.Infof("社区检查完成 for %s: is_safe=%v", address, result.IsSafe)
	return &result, nil
}
