package handler

import (
	"net/http"
	"time"

	"riskscan/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			// --- Analyze Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/analyze/address",
				Handler: AnalyzeAddressHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/analyze/features",
				Handler: ExtractFeaturesHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/analyze/ratio",
				Handler: ResolveRatioHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/analyze/history",
				Handler: HistoryHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/"),
		// 分析链路串联多个外部数据源，超时放宽到 60s
		rest.WithTimeout(60000*time.Millisecond),
	)
}
