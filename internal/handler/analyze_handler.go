package handler

import (
	"net/http"

	"riskscan/internal/logic/analyze"
	"riskscan/internal/svc"
	"riskscan/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// AnalyzeAddressHandler 地址风险分析入口
func AnalyzeAddressHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AnalyzeAddressReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := analyze.NewAnalyzeLogic(r.Context(), svcCtx)
		resp, err := l.AnalyzeAddress(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// ExtractFeaturesHandler 仅做特征提取，便于调试与模型侧复用
func ExtractFeaturesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ExtractFeaturesReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := analyze.NewAnalyzeLogic(r.Context(), svcCtx)
		resp, err := l.ExtractFeatures(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// ResolveRatioHandler 独立的代币价格解析入口
func ResolveRatioHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResolveRatioReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := analyze.NewAnalyzeLogic(r.Context(), svcCtx)
		resp, err := l.ResolveRatio(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// HistoryHandler 返回最近的分析记录列表
func HistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.HistoryListReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := analyze.NewAnalyzeLogic(r.Context(), svcCtx)
		resp, err := l.ListHistory(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
