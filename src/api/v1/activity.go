package v1

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapExchange/src/common/errcode"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xhttp"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
	service "github.com/ProjectsTask/EasySwapExchange/src/service/v1"
	types "github.com/ProjectsTask/EasySwapExchange/src/types/v1"
)

// ActivityHandler queries the exchange activity journal. Filters arrive as a
// JSON object in the 'filters' query parameter.
func ActivityHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		filterParam := c.Query("filters")
		if filterParam == "" {
			xhttp.Error(c, errcode.NewCustomErr("Filter param is nil."))
			return
		}

		var filter types.ActivityFilterParam
		if err := json.Unmarshal([]byte(filterParam), &filter); err != nil {
			xhttp.Error(c, errcode.NewCustomErr("Filter param is invalid."))
			return
		}

		res, err := service.GetActivities(c.Request.Context(), svcCtx, filter)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr("Get activities failed."))
			return
		}
		xhttp.OkJson(c, res)
	}
}
