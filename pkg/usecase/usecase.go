package usecase

import (
	"github.com/secmon-lab/assetcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
)

type UseCases struct {
	repo   interfaces.Repository
	layout spreadsheet.Layout
	Task   *TaskUseCase
	Asset  *AssetUseCase
}

type Option func(*UseCases)

// WithLayout sets the default import sheet layout
func WithLayout(layout spreadsheet.Layout) Option {
	return func(uc *UseCases) {
		uc.layout = layout
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		layout: spreadsheet.DefaultLayout(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Task = NewTaskUseCase(repo, uc.layout)
	uc.Asset = NewAssetUseCase(repo)

	return uc
}
