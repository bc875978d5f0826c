package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/lookup"
)

type SearchController struct {
	store SearchStore
}

func NewSearchController(store SearchStore) *SearchController {
	return &SearchController{store: store}
}

// Search matches items, chapters and topics.
// GET /search?q=&type=
func (sc *SearchController) Search(c *gin.Context) {
	results, err := sc.store.Search(c.Request.Context(), GetUserID(c), c.Query("q"), c.Query("type"))
	if err != nil {
		respondError(c, err, "search")
		return
	}
	c.JSON(http.StatusOK, results)
}

// CompoundResponse carries a compound and the item properties derived from it.
type CompoundResponse struct {
	Compound   *lookup.Compound         `json:"compound"`
	Properties []entities.PropertyInput `json:"properties"`
}

type LookupController struct {
	compounds CompoundSearcher
}

func NewLookupController(compounds CompoundSearcher) *LookupController {
	return &LookupController{compounds: compounds}
}

// GET /lookup/compounds?name=
func (lc *LookupController) LookupCompound(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	compound, err := lc.compounds.Search(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "lookup compound")
		return
	}
	if compound == nil {
		respondNotFound(c, "Compound")
		return
	}

	c.JSON(http.StatusOK, CompoundResponse{Compound: compound, Properties: compound.ToProperties()})
}
