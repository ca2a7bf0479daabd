package product

import "github.com/shopspring/decimal"

// Seed is the storefront's catalog of Ecuadorian agricultural products.
func Seed() []Product {
	return []Product{
		{
			ID:                "1",
			Name:              "Banano Premium",
			Image:             "https://images.unsplash.com/photo-1603833665858-e61d17a86224?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("1.20"),
			TransportIncluded: true,
			TransporterName:   Some("Transportes del Pacífico"),
			Description:       "Banano ecuatoriano de exportación, dulce y de textura perfecta",
			Premium:           Some(true),
			Organic:           Some(true),
			ProductOfYear:     Some(true),
			Seller:            Seller{ID: "seller-1", Name: "Hacienda Valle Verde"},
		},
		{
			ID:                "2",
			Name:              "Cacao Fino de Aroma",
			Image:             "https://images.unsplash.com/photo-1511381939415-e44015466834?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("8.50"),
			TransportIncluded: true,
			TransporterName:   Some("Logística Agro Express"),
			Description:       "Cacao ecuatoriano reconocido mundialmente por su calidad premium",
			Premium:           Some(true),
			Organic:           Some(true),
			Seller:            Seller{ID: "seller-2", Name: "Cacaoteros del Sur"},
		},
		{
			ID:                "3",
			Name:              "Café Arábigo",
			Image:             "https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("12.00"),
			TransportIncluded: false,
			Description:       "Café de altura cultivado en las montañas andinas",
			Premium:           Some(false),
			Organic:           Some(true),
			Seller:            Seller{ID: "seller-3", Name: "Café de los Andes"},
		},
		{
			ID:                "4",
			Name:              "Arroz Premium",
			Image:             "https://images.unsplash.com/photo-1586201375761-83865001e31c?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("2.80"),
			TransportIncluded: true,
			TransporterName:   Some("Distribuidora Nacional"),
			Description:       "Arroz de grano largo, ideal para todo tipo de platillos",
			Premium:           Some(true),
			Seller:            Seller{ID: "seller-4", Name: "Arrocera San Luis"},
		},
		{
			ID:                "5",
			Name:              "Maíz Amarillo",
			Image:             "https://images.unsplash.com/photo-1551754655-cd27e38d2076?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("1.50"),
			TransportIncluded: false,
			Description:       "Maíz fresco de la costa ecuatoriana",
			Seller:            Seller{ID: "seller-5", Name: "Agrícola Costa Dorada"},
		},
		{
			ID:                "6",
			Name:              "Papa Chola",
			Image:             "https://images.unsplash.com/photo-1518977676601-b53f82aba655?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("1.80"),
			TransportIncluded: true,
			TransporterName:   Some("Transporte Sierra"),
			Description:       "Papa de altura de la sierra ecuatoriana, perfecta para locro y fritada",
			Premium:           Some(false),
			ProductOfYear:     Some(true),
			Seller:            Seller{ID: "seller-6", Name: "Papas del Chimborazo"},
		},
		{
			ID:                "7",
			Name:              "Tomate Riñón",
			Image:             "https://images.unsplash.com/photo-1592924357228-91a4daadcfea?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("2.20"),
			TransportIncluded: false,
			Description:       "Tomate riñón fresco y jugoso",
			Seller:            Seller{ID: "seller-7", Name: "Hortalizas del Valle"},
		},
		{
			ID:                "8",
			Name:              "Piña Golden",
			Image:             "https://images.unsplash.com/photo-1550258987-190a2d41a8ba?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("1.80"),
			TransportIncluded: true,
			TransporterName:   Some("Frutas Express"),
			Description:       "Piña dulce y aromática, perfecta para jugos y postres",
			Premium:           Some(true),
			Organic:           Some(false),
			Seller:            Seller{ID: "seller-8", Name: "Tropical Fruits Co."},
		},
		{
			ID:                "9",
			Name:              "Mango de Exportación",
			Image:             "https://images.unsplash.com/photo-1553279768-865429fa0078?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("3.20"),
			TransportIncluded: true,
			TransporterName:   Some("Logística Tropical"),
			Description:       "Mango ecuatoriano de pulpa dulce y jugosa",
			Premium:           Some(false),
			Organic:           Some(true),
			Seller:            Seller{ID: "seller-9", Name: "Mangos del Guayas"},
		},
		{
			ID:                "10",
			Name:              "Aguacate Hass",
			Image:             "https://images.unsplash.com/photo-1523049673857-eb18f1d7b578?w=400&h=300&fit=crop",
			PricePerKg:        decimal.RequireFromString("4.50"),
			TransportIncluded: false,
			Description:       "Aguacate Hass cremoso y nutritivo",
			Premium:           Some(true),
			Organic:           Some(true),
			ProductOfYear:     Some(false),
			Seller:            Seller{ID: "seller-10", Name: "Aguacates Premium"},
		},
	}
}
