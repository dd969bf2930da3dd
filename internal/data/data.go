package data

import (
	"database/sql"

	"github.com/neztrixTON/app/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	DB          *sql.DB
	Chat        repo.ChatRepo
	Presence    repo.PresenceRepo
	Permission  repo.PermissionRepo
	Attachments repo.AttachmentStore
}

// Options configures NewRepositories
type Options struct {
	DBPath         string
	UploadDir      string
	FilesURLPrefix string
	MaxUploadBytes int64
}

// NewRepositories opens the database and creates all repositories
func NewRepositories(opts Options) (*Repositories, error) {
	db, err := OpenDB(opts.DBPath)
	if err != nil {
		return nil, err
	}

	permissionRepo, err := NewPermissionRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	attachments, err := NewDiskAttachmentStore(opts.UploadDir, opts.FilesURLPrefix, opts.MaxUploadBytes)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		DB:          db,
		Chat:        NewChatRepo(db),
		Presence:    NewPresenceRepo(db),
		Permission:  permissionRepo,
		Attachments: attachments,
	}, nil
}

// Close closes the database
func (r *Repositories) Close() error {
	return r.DB.Close()
}
