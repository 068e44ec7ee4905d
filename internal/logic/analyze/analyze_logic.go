package analyze

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"riskscan/internal/constant"
	"riskscan/internal/errs"
	"riskscan/internal/logic/feature"
	"riskscan/internal/logic/price"
	"riskscan/internal/model"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

type AnalyzeLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewAnalyzeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AnalyzeLogic {
	return &AnalyzeLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// AnalyzeAddress 对地址执行两阶段风险分析：社区标记优先，
// 社区放行后再走特征工程 + 模型评分，最后按固定规则融合。
func (l *AnalyzeLogic) AnalyzeAddress(req *types.AnalyzeAddressReq) (*types.AnalysisVerdict, error) {
	// 1. 校验并修剪输入
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, errs.NewInvalidAddress(req.Address, "address cannot be empty")
	}
	l.Infof("--- 开始分析地址 %s ---", address)

	// 2. 社区检查，被标记即终止
	community, err := NewCommunityLogic(l.ctx, l.svcCtx).Check(address)
	if err != nil {
		return nil, err
	}
	if !community.IsSafe {
		l.Infof("地址 %s 被社区标记为不安全，跳过模型评分", address)
		verdict := l.communityUnsafeVerdict(address, community)
		l.persist(verdict)
		return verdict, nil
	}

	// 3. 链类型检测 + 特征提取
	network := constant.DetectAddressNetwork(address)
	if !constant.IsNetworkSupported(network) {
		return nil, errs.NewUnsupportedNetwork(address, string(network))
	}

	extracted, err := l.extractByNetwork(address, network)
	if err != nil {
		return nil, err
	}
	l.Infof("地址 %s 特征提取完成，%d 维向量，%d 条交易",
		address, len(extracted.Features), extracted.TransactionCount)

	// 4. 模型评分
	modelResp, err := NewModelLogic(l.ctx, l.svcCtx).Score(&types.ModelScoreReq{
		Address:          address,
		Network:          string(network),
		FeatureNames:     extracted.FeatureNames,
		Features:         extracted.Features,
		TransactionCount: extracted.TransactionCount,
	})
	if err != nil {
		return nil, err
	}

	// 5. 融合：社区已放行，结论仅取决于模型
	//    (model unsafe, community unsafe) 组合在本排序下不可达
	var verdict *types.AnalysisVerdict
	if modelResp.IsRansomware {
		verdict = l.modelVerdict(address, network, community, modelResp, types.SourceModel)
	} else {
		verdict = l.modelVerdict(address, network, community, modelResp, types.SourceCommunityAndModel)
	}

	// 6. 落库与事件推送均为尽力而为，失败不改变已生成的结论
	l.persist(verdict)
	return verdict, nil
}

// ExtractFeatures 独立的特征提取入口，供调试与复用
func (l *AnalyzeLogic) ExtractFeatures(req *types.ExtractFeaturesReq) (*types.ExtractFeaturesResp, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, errs.NewInvalidAddress(req.Address, "address cannot be empty")
	}

	network := constant.DetectAddressNetwork(address)
	if !constant.IsNetworkSupported(network) {
		return nil, errs.NewUnsupportedNetwork(address, string(network))
	}
	return l.extractByNetwork(address, network)
}

// ResolveRatio 独立的价格解析入口
func (l *AnalyzeLogic) ResolveRatio(req *types.ResolveRatioReq) (*types.ResolveRatioResp, error) {
	contractAddress := strings.TrimSpace(req.ContractAddress)
	if contractAddress == "" {
		return nil, errs.NewInvalidAddress(req.ContractAddress, "contract address cannot be empty")
	}

	priceLogic := price.NewPriceLogic(l.ctx, l.svcCtx)
	info := priceLogic.TokenInfo(contractAddress)
	return &types.ResolveRatioResp{
		ContractAddress: contractAddress,
		Symbol:          info.Symbol,
		Ratio:           priceLogic.TokenEthRatio(contractAddress, req.Timestamp),
	}, nil
}

// ListHistory 返回最近的分析记录
func (l *AnalyzeLogic) ListHistory(req *types.HistoryListReq) (*types.HistoryListResp, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := l.svcCtx.HistoryDao.FindRecent(l.ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := &types.HistoryListResp{Records: make([]types.HistoryRecord, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, types.HistoryRecord{
			AnalysisId: r.AnalysisId,
			Address:    r.Address,
			Network:    r.Network,
			IsSafe:     r.IsSafe,
			Confidence: r.Confidence,
			RiskLevel:  r.RiskLevel,
			Source:     r.Source,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	resp.Total = len(resp.Records)
	return resp, nil
}

func (l *AnalyzeLogic) extractByNetwork(address string, network constant.Network) (*types.ExtractFeaturesResp, error) {
	switch network {
	case constant.NetworkEthereum:
		return feature.NewEthFeatureLogic(l.ctx, l.svcCtx).ExtractFeatures(strings.ToLower(address))
	case constant.NetworkBitcoin:
		return feature.NewBtcFeatureLogic(l.ctx, l.svcCtx).ExtractFeatures(address)
	default:
		return nil, errs.NewUnsupportedNetwork(address, string(network))
	}
}

// communityUnsafeVerdict 社区标记不安全时的终态结论
func (l *AnalyzeLogic) communityUnsafeVerdict(address string, community *types.CommunityCheckResp) *types.AnalysisVerdict {
	return &types.AnalysisVerdict{
		Address:    address,
		Network:    string(constant.DetectAddressNetwork(address)),
		IsSafe:     false,
		Confidence: 75,
		RiskLevel:  types.RiskLevelHigh,
		Source:     types.SourceCommunity,
		Description: "This address has been flagged by the community as potentially unsafe " +
			"based on community reports and voting.",
		AnalyzedAt:      time.Now().UTC().Format(time.RFC3339),
		CommunityResult: community,
	}
}

// modelVerdict 由模型结果生成结论，风险等级按勒索概率分档
func (l *AnalyzeLogic) modelVerdict(address string, network constant.Network,
	community *types.CommunityCheckResp, modelResp *types.ModelScoreResp, source string) *types.AnalysisVerdict {

	riskLevel := types.RiskLevelLow
	if modelResp.RansomwareProbability > 0.7 {
		riskLevel = types.RiskLevelHigh
	} else if modelResp.RansomwareProbability > 0.3 {
		riskLevel = types.RiskLevelMedium
	}

	var description string
	if modelResp.IsRansomware {
		description = fmt.Sprintf("This %s address shows concerning patterns that may indicate "+
			"suspicious activity. Analyzed %d transactions.",
			strings.ToLower(string(network)), modelResp.TransactionsAnalyzed)
	} else {
		description = fmt.Sprintf("This %s address appears to be clean with no suspicious activity "+
			"detected. Analyzed %d transactions.",
			strings.ToLower(string(network)), modelResp.TransactionsAnalyzed)
	}

	return &types.AnalysisVerdict{
		Address:              address,
		Network:              string(network),
		IsSafe:               !modelResp.IsRansomware,
		Confidence:           int(math.Round(modelResp.Confidence * 100)),
		RiskLevel:            riskLevel,
		Source:               source,
		Description:          description,
		TransactionsAnalyzed: modelResp.TransactionsAnalyzed,
		AnalyzedAt:           time.Now().UTC().Format(time.RFC3339),
		ModelResult:          modelResp,
		CommunityResult:      community,
	}
}

// persist 将结论写入历史库并推送事件流，两者失败都只记日志
func (l *AnalyzeLogic) persist(verdict *types.AnalysisVerdict) {
	record := &model.AnalysisHistories{
		AnalysisId:           uuid.NewString(),
		Address:              verdict.Address,
		Network:              verdict.Network,
		IsSafe:               verdict.IsSafe,
		Confidence:           verdict.Confidence,
		RiskLevel:            verdict.RiskLevel,
		Source:               verdict.Source,
		Description:          verdict.Description,
		TransactionsAnalyzed: verdict.TransactionsAnalyzed,
		CreatedAt:            time.Now().UTC(),
	}

	if l.svcCtx.HistoryDao != nil {
		if err := l.svcCtx.HistoryDao.Insert(l.ctx, record); err != nil {
			l.Errorf("分析历史落库失败 for %s: %v", verdict.Address, err)
		}
	}
	if l.svcCtx.VerdictProducer != nil {
		l.svcCtx.VerdictProducer.PublishVerdict(verdict)
	}
}
