package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"dropskills/internal/logger"
	"dropskills/internal/model"
	"dropskills/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VaultFilter struct {
	Folder    string `form:"folder"`
	Type      string `form:"type"`
	Query     string `form:"q"`
	Favorites bool   `form:"favorites"`
	Shared    bool   `form:"shared"`
	Sort      string `form:"sort"`
}

type VaultService struct {
	db    *gorm.DB
	store *storage.Client
}

func NewVaultService(db *gorm.DB, store *storage.Client) *VaultService {
	return &VaultService{db: db, store: store}
}

func defaultVaultItems(userID string) []model.VaultItem {
	const mb = 1024 * 1024
	return []model.VaultItem{
		{UserID: userID, Name: "Guide du dropshipping 2024.pdf", Type: "pdf", Size: 2*mb + 400*1024, Folder: "Guides", IsFavorite: true, Tags: []string{"dropshipping", "débutant"}},
		{UserID: userID, Name: "Checklist lancement produit.pdf", Type: "pdf", Size: 850 * 1024, Folder: "Guides", Tags: []string{"lancement", "checklist"}},
		{UserID: userID, Name: "Template page de vente.doc", Type: "doc", Size: 420 * 1024, Folder: "Templates", IsShared: true, Tags: []string{"copywriting", "vente"}},
		{UserID: userID, Name: "Calendrier éditorial.xlsx", Type: "spreadsheet", Size: 160 * 1024, Folder: "Templates", Tags: []string{"contenu", "planning"}},
		{UserID: userID, Name: "Séquence email de bienvenue.doc", Type: "doc", Size: 96 * 1024, Folder: "Générés par IA", Tags: []string{"email"}, AISource: "Générateur d'emails"},
		{UserID: userID, Name: "Persona client idéal.pdf", Type: "pdf", Size: 310 * 1024, Folder: "Générés par IA", IsFavorite: true, Tags: []string{"icp", "persona"}, AISource: "Générateur d'ICP"},
		{UserID: userID, Name: "Visuels réseaux sociaux.zip", Type: "archive", Size: 18 * mb, Folder: "Ressources", Tags: []string{"visuels"}},
		{UserID: userID, Name: "Masterclass tunnel de vente.mp4", Type: "video", Size: 245 * mb, Folder: "Formations", Tags: []string{"tunnel", "vidéo"}},
	}
}

// ensureSeeded fills an empty vault with starter items on first access.
func (s *VaultService) ensureSeeded(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Select("id", "vault_seeded").First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if u.VaultSeeded {
			return nil
		}
		items := defaultVaultItems(userID)
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("seed vault: %w", err)
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("vault_seeded", true).Error
	})
}

func (s *VaultService) all(ctx context.Context, userID string) ([]model.VaultItem, error) {
	if err := s.ensureSeeded(ctx, userID); err != nil {
		return nil, err
	}
	var items []model.VaultItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}
	return items, nil
}

func (s *VaultService) List(ctx context.Context, userID string, f VaultFilter) ([]model.VaultItem, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := FilterVault(items, f)
	SortVault(out, f.Sort)
	return out, nil
}

// FilterVault keeps the items matching every set criterion.
func FilterVault(items []model.VaultItem, f VaultFilter) []model.VaultItem {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.VaultItem, 0, len(items))
	for _, it := range items {
		if f.Folder != "" && f.Folder != "all" && it.Folder != f.Folder {
			continue
		}
		if f.Type != "" && f.Type != "all" && it.Type != f.Type {
			continue
		}
		if f.Favorites && !it.IsFavorite {
			continue
		}
		if f.Shared && !it.IsShared {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) && !hasTag(it.Tags, q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func hasTag(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// SortVault orders by name, size (largest first) or date (newest first).
func SortVault(items []model.VaultItem, by string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch by {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "size":
			return a.Size > b.Size
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

func (s *VaultService) Folders(ctx context.Context, userID string) ([]model.VaultFolder, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, it := range items {
		counts[it.Folder]++
	}
	out := make([]model.VaultFolder, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.VaultFolder{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *VaultService) Stats(ctx context.Context, userID string) (model.VaultStats, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return model.VaultStats{}, err
	}
	return VaultStatsOf(items), nil
}

func VaultStatsOf(items []model.VaultItem) model.VaultStats {
	st := model.VaultStats{Count: len(items)}
	for _, it := range items {
		st.TotalSize += it.Size
		if it.IsFavorite {
			st.Favorites++
		}
		if it.IsShared {
			st.Shared++
		}
	}
	return st
}

func (s *VaultService) get(ctx context.Context, userID, id string) (*model.VaultItem, error) {
	var it model.VaultItem
	err := s.db.WithContext(ctx).First(&it, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("vault item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vault item: %w", err)
	}
	return &it, nil
}

// ToggleFavorite flips the favourite flag of one item only.
func (s *VaultService) ToggleFavorite(ctx context.Context, userID, id string) (*model.VaultItem, error) {
	return s.toggle(ctx, userID, id, "is_favorite", func(it *model.VaultItem) *bool { return &it.IsFavorite })
}

func (s *VaultService) ToggleShare(ctx context.Context, userID, id string) (*model.VaultItem, error) {
	return s.toggle(ctx, userID, id, "is_shared", func(it *model.VaultItem) *bool { return &it.IsShared })
}

func (s *VaultService) toggle(ctx context.Context, userID, id, col string, flag func(*model.VaultItem) *bool) (*model.VaultItem, error) {
	it, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f := flag(it)
	*f = !*f
	if err := s.db.WithContext(ctx).Model(it).Update(col, *f).Error; err != nil {
		return nil, fmt.Errorf("toggle %s: %w", col, err)
	}
	return it, nil
}

func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	it, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(it).Error; err != nil {
		return fmt.Errorf("delete vault item: %w", err)
	}
	if it.ObjectKey != "" && s.store.Enabled() {
		if err := s.store.Delete(ctx, userID, it.ObjectKey); err != nil {
			logger.Warn("vault.object.delete_failed", "item", id, "err", err)
		}
	}
	return nil
}

type Upload struct {
	Name        string
	Folder      string
	Size        int64
	ContentType string
	Tags        []string
	Body        io.Reader
}

func (s *VaultService) Upload(ctx context.Context, userID string, up Upload) (*model.VaultItem, error) {
	if !s.store.Enabled() {
		return nil, storage.ErrDisabled
	}
	name := strings.TrimSpace(path.Base(up.Name))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: file name", ErrInvalidInput)
	}
	if err := s.ensureSeeded(ctx, userID); err != nil {
		return nil, err
	}
	folder := strings.TrimSpace(up.Folder)
	if folder == "" {
		folder = "Mes fichiers"
	}
	key := uuid.NewString() + "/" + name
	if err := s.store.Put(ctx, userID, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, err
	}
	it := &model.VaultItem{
		UserID:    userID,
		Name:      name,
		Type:      TypeFromName(name),
		Size:      up.Size,
		Folder:    folder,
		Tags:      up.Tags,
		ObjectKey: key,
	}
	if err := s.db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, fmt.Errorf("create vault item: %w", err)
	}
	return it, nil
}

func (s *VaultService) Download(ctx context.Context, userID, id string) (*model.VaultItem, *storage.Object, error) {
	it, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if it.ObjectKey == "" {
		return nil, nil, fmt.Errorf("vault item %s has no file: %w", id, ErrNotFound)
	}
	obj, err := s.store.Get(ctx, userID, it.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return it, obj, nil
}

var typeByExt = map[string]string{
	".pdf": "pdf",
	".doc": "doc", ".docx": "doc", ".txt": "doc", ".md": "doc", ".odt": "doc",
	".png": "image", ".jpg": "image", ".jpeg": "image", ".gif": "image", ".webp": "image", ".svg": "image",
	".mp4": "video", ".mov": "video", ".webm": "video",
	".mp3": "audio", ".wav": "audio", ".m4a": "audio",
	".xls": "spreadsheet", ".xlsx": "spreadsheet", ".csv": "spreadsheet", ".ods": "spreadsheet",
	".zip": "archive", ".rar": "archive", ".7z": "archive", ".tar": "archive", ".gz": "archive",
}

func TypeFromName(name string) string {
	if t, ok := typeByExt[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return "other"
}
