package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgportal/tgportal/classify"
	"github.com/tgportal/tgportal/model"
)

const defaultPageSize = 20

func (s *Server) ListPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	posts, err := s.store.ListPosts(c.Query("section"), c.Query("materialType"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) GetPost(c *gin.Context) {
	post, err := s.store.PostByID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "msg": "no such post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) ListSections(c *gin.Context) {
	sections, err := s.store.ListSections()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

func (s *Server) ListMaterialTypes(c *gin.Context) {
	materialTypes, err := s.store.ListMaterialTypes()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materialTypes": materialTypes})
}

type classificationResponse struct {
	SectionIDs               []string `json:"sectionIds"`
	MaterialTypeIDs          []string `json:"materialTypeIds"`
	SuggestedSectionIDs      []string `json:"suggestedSectionIds"`
	SuggestedMaterialTypeIDs []string `json:"suggestedMaterialTypeIds"`
}

// GetClassification returns the post's stored links plus the classifier's
// suggestions for the edit dialog. When stored links exist they take
// precedence; the suggestions are only a pre-fill hint for unclassified
// posts.
func (s *Server) GetClassification(c *gin.Context) {
	post, err := s.store.PostByID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "msg": "no such post"})
		return
	}

	sections, err := s.store.ListSections()
	if err != nil {
		writeError(c, err)
		return
	}
	materialTypes, err := s.store.ListMaterialTypes()
	if err != nil {
		writeError(c, err)
		return
	}
	suggestedSections, suggestedMaterialTypes := classify.Classify(post.Hashtags, sections, materialTypes)

	resp := classificationResponse{
		SectionIDs:               make([]string, 0, len(post.Sections)),
		MaterialTypeIDs:          make([]string, 0, len(post.MaterialTypes)),
		SuggestedSectionIDs:      suggestedSections,
		SuggestedMaterialTypeIDs: suggestedMaterialTypes,
	}
	for _, section := range post.Sections {
		resp.SectionIDs = append(resp.SectionIDs, section.Id)
	}
	for _, materialType := range post.MaterialTypes {
		resp.MaterialTypeIDs = append(resp.MaterialTypeIDs, materialType.Id)
	}
	c.JSON(http.StatusOK, resp)
}

type classificationRequest struct {
	SectionIDs      []string `json:"sectionIds"`
	MaterialTypeIDs []string `json:"materialTypeIds"`
}

// PutClassification fully replaces the post's links with the submitted set.
// Delete-then-insert inside one transaction; re-submitting the same body is
// always safe.
func (s *Server) PutClassification(c *gin.Context) {
	var req classificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "malformed classification body"})
		return
	}

	post, err := s.store.PostByID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "msg": "no such post"})
		return
	}

	sectionCount, materialTypeCount, err := s.store.CountCategories(req.SectionIDs, req.MaterialTypeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	if sectionCount != int64(len(req.SectionIDs)) || materialTypeCount != int64(len(req.MaterialTypeIDs)) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "msg": "unknown category reference"})
		return
	}

	if err := s.store.ReplacePostLinks(post.Id, req.SectionIDs, req.MaterialTypeIDs); err != nil {
		writeError(c, err)
		return
	}
	s.store.Record(currentAdmin(c).Id, "classify_post", post.Id, c.ClientIP())
	c.Status(http.StatusNoContent)
}

type categoryRequest struct {
	Name     string   `json:"name" binding:"required"`
	Hashtags []string `json:"hashtags"`
}

func (s *Server) CreateSection(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "name is required"})
		return
	}
	section := &model.Section{Name: req.Name, Hashtags: req.Hashtags}
	if err := s.store.CreateSection(section); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (s *Server) UpdateSection(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "name is required"})
		return
	}
	section := &model.Section{Id: c.Param("id"), Name: req.Name, Hashtags: req.Hashtags}
	if err := s.store.UpdateSection(section); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (s *Server) DeleteSection(c *gin.Context) {
	if err := s.store.DeleteSection(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) CreateMaterialType(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "name is required"})
		return
	}
	materialType := &model.MaterialType{Name: req.Name, Hashtags: req.Hashtags}
	if err := s.store.CreateMaterialType(materialType); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, materialType)
}

func (s *Server) UpdateMaterialType(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "name is required"})
		return
	}
	materialType := &model.MaterialType{Id: c.Param("id"), Name: req.Name, Hashtags: req.Hashtags}
	if err := s.store.UpdateMaterialType(materialType); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, materialType)
}

func (s *Server) DeleteMaterialType(c *gin.Context) {
	if err := s.store.DeleteMaterialType(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
