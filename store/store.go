// Package store implements the storage interfaces consumed by the auth and
// collector packages on top of gorm/postgres, plus the queries the API
// handlers need.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tgportal/tgportal/model"
	Logger "github.com/tgportal/tgportal/utils/log"
)

type GormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ---- auth.AdminStore ----

func (s *GormStore) AdminByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	result := s.db.Where("lower(email) = lower(?)", email).First(&admin)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}

func (s *GormStore) AdminByID(id string) (*model.Admin, error) {
	var admin model.Admin
	result := s.db.Where("id = ?", id).First(&admin)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}

func (s *GormStore) UpdateAdmin(admin *model.Admin) error {
	return s.db.Save(admin).Error
}

// ---- auth.SessionStore ----

func (s *GormStore) CreateSession(session *model.AdminSession) error {
	return s.db.Create(session).Error
}

func (s *GormStore) SessionByToken(token string) (*model.AdminSession, error) {
	var session model.AdminSession
	result := s.db.Preload("Admin").Where("token = ?", token).First(&session)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &session, nil
}

func (s *GormStore) DeleteSession(token string) error {
	return s.db.Where("token = ?", token).Delete(&model.AdminSession{}).Error
}

// ---- auth.ActivityLogger ----

// Record appends an audit row. It never fails the calling operation.
func (s *GormStore) Record(adminID, action, detail, clientIP string) {
	row := &model.AdminActivityLog{
		Id:       uuid.New().String(),
		AdminId:  adminID,
		Action:   action,
		Detail:   detail,
		ClientIP: clientIP,
	}
	if err := s.db.Create(row).Error; err != nil {
		Logger.Log.Error("write activity log: ", err)
	}
}

// ---- collector.PostStore ----

func (s *GormStore) PostBySourceMessageID(id int64) (*model.Post, error) {
	var post model.Post
	result := s.db.Where("source_message_id = ?", id).First(&post)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

func (s *GormStore) CreatePost(post *model.Post) error {
	return s.db.Create(post).Error
}

// ReplacePostLinks swaps out the post's classification in one transaction:
// delete all existing links, insert the new set. Safe to retry as-is after a
// partial failure.
func (s *GormStore) ReplacePostLinks(postID string, sectionIDs, materialTypeIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_sections WHERE post_id = ?", postID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_material_types WHERE post_id = ?", postID).Error; err != nil {
			return err
		}
		for _, id := range sectionIDs {
			if err := tx.Exec("INSERT INTO post_sections (post_id, section_id) VALUES (?, ?)", postID, id).Error; err != nil {
				return err
			}
		}
		for _, id := range materialTypeIDs {
			if err := tx.Exec("INSERT INTO post_material_types (post_id, material_type_id) VALUES (?, ?)", postID, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) ListSections() ([]model.Section, error) {
	var sections []model.Section
	if err := s.db.Order("created_at").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (s *GormStore) ListMaterialTypes() ([]model.MaterialType, error) {
	var materialTypes []model.MaterialType
	if err := s.db.Order("created_at").Find(&materialTypes).Error; err != nil {
		return nil, err
	}
	return materialTypes, nil
}

// ---- browse and admin queries ----

func (s *GormStore) PostByID(id string) (*model.Post, error) {
	var post model.Post
	result := s.db.Preload("Sections").Preload("MaterialTypes").Where("id = ?", id).First(&post)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

// ListPosts returns posts newest first, optionally filtered by a section
// and/or material type id.
func (s *GormStore) ListPosts(sectionID, materialTypeID string, limit, offset int) ([]model.Post, error) {
	query := s.db.Model(&model.Post{}).
		Preload("Sections").
		Preload("MaterialTypes").
		Order("published_at desc").
		Limit(limit).
		Offset(offset)
	if sectionID != "" {
		query = query.
			Joins("JOIN post_sections ON post_sections.post_id = posts.id").
			Where("post_sections.section_id = ?", sectionID)
	}
	if materialTypeID != "" {
		query = query.
			Joins("JOIN post_material_types ON post_material_types.post_id = posts.id").
			Where("post_material_types.material_type_id = ?", materialTypeID)
	}
	var posts []model.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) CreateSection(section *model.Section) error {
	if section.Id == "" {
		section.Id = uuid.New().String()
	}
	return s.db.Create(section).Error
}

func (s *GormStore) UpdateSection(section *model.Section) error {
	return s.db.Save(section).Error
}

func (s *GormStore) DeleteSection(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_sections WHERE section_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Section{}).Error
	})
}

func (s *GormStore) CreateMaterialType(materialType *model.MaterialType) error {
	if materialType.Id == "" {
		materialType.Id = uuid.New().String()
	}
	return s.db.Create(materialType).Error
}

func (s *GormStore) UpdateMaterialType(materialType *model.MaterialType) error {
	return s.db.Save(materialType).Error
}

func (s *GormStore) DeleteMaterialType(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_material_types WHERE material_type_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.MaterialType{}).Error
	})
}

// CountCategories reports how many of the given ids exist per taxonomy, so
// handlers can reject classification requests referencing unknown
// categories.
func (s *GormStore) CountCategories(sectionIDs, materialTypeIDs []string) (int64, int64, error) {
	var sections, materialTypes int64
	if len(sectionIDs) > 0 {
		if err := s.db.Model(&model.Section{}).Where("id IN ?", sectionIDs).Count(&sections).Error; err != nil {
			return 0, 0, err
		}
	}
	if len(materialTypeIDs) > 0 {
		if err := s.db.Model(&model.MaterialType{}).Where("id IN ?", materialTypeIDs).Count(&materialTypes).Error; err != nil {
			return 0, 0, err
		}
	}
	return sections, materialTypes, nil
}

// CreateAdmin seeds an admin account. Used by the bootstrap path in
// cmd/server when ADMIN_EMAIL/ADMIN_PASSWORD are set and no such admin
// exists yet.
func (s *GormStore) CreateAdmin(admin *model.Admin) error {
	if admin.Id == "" {
		admin.Id = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	return s.db.Create(admin).Error
}
