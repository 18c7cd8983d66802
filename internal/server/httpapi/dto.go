package httpapi

import (
	"time"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Secret   string `json:"secret"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type renameRequest struct {
	FileName string `json:"filename" binding:"required"`
}

type shareRequest struct {
	Username string `json:"username" binding:"required"`
}

type noteDTO struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Owned     bool      `json:"owned"`
}

type fileDTO struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type sharedNoteDTO struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Owner     string    `json:"owner"`
	GrantedAt time.Time `json:"granted_at"`
}

type sharedFileDTO struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Owner      string    `json:"owner"`
	GrantedAt  time.Time `json:"granted_at"`
}

type grantDTO struct {
	Username  string    `json:"username"`
	GrantedAt time.Time `json:"granted_at"`
}

func toNoteDTO(n *models.Note, accountID int64) noteDTO {
	return noteDTO{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt, Owned: n.AccountID == accountID}
}

func toFileDTO(f *models.File) fileDTO {
	return fileDTO{ID: f.ID, FileName: f.FileName, UploadedAt: f.UploadedAt}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
