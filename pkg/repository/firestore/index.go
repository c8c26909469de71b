package firestore

import "github.com/m-mizutani/fireconf"

// IndexConfig returns the composite indexes the queries of this package need
func IndexConfig(collectionPrefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: TasksCollection(collectionPrefix),
				Indexes: []fireconf.Index{
					// TaskRepository.List: created_at DESC, id DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "created_at", Order: fireconf.OrderDescending},
							{Path: "id", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
