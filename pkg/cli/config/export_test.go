package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:     backend,
		sqlitePath:  sqlitePath,
		autoMigrate: true,
	}
}

// NewLayoutForTest creates a Layout config for testing purposes
func NewLayoutForTest(path string) *Layout {
	return &Layout{path: path}
}
