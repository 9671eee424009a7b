package storage

import "sf-housing/models"

func fp(v float64) *float64 { return &v }

func sampleCleanDataset() *models.CleanDataset {
	return &models.CleanDataset{
		Columns: []string{"address", "facts and features", "price", "title"},
		Listings: []*models.Listing{
			{
				Fields: map[string]string{
					"address": "1 Main St", "facts and features": "3 bd, 2 ba, 1,500 sqft",
					"price": "$1.2M", "title": "Condo For Sale",
				},
				Price: fp(1200000), Bed: fp(3), Bath: fp(2), Sqft: fp(1500),
				PropertyType: models.PropertyTypeCondo,
			},
			{
				Fields: map[string]string{
					"address": "4 Main St", "facts and features": "",
					"price": "N/A", "title": "For Sale by Owner",
				},
			},
		},
	}
}
