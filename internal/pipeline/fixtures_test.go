package pipeline

import "github.com/leadgen-my/leadgen-cli/internal/model"

func listingPayload() map[string]any {
	return map[string]any{
		"name":    "Tech Solutions Sdn Bhd",
		"address": "123 Jalan Bukit Bintang, Kuala Lumpur 50200, Malaysia",
		"phone":   "+60312345678",
		"website": "https://www.techsolutions.my",
		"rating":  4.5,
		"reviews": 100,
		"category": "Software Development, IT Services",
		"coordinates": map[string]any{
			"latitude":  3.1478,
			"longitude": 101.7152,
		},
	}
}

func profilePayload() map[string]any {
	return map[string]any{
		"username":          "techsolutionsmy",
		"full_name":         "Tech Solutions Malaysia",
		"email":             "info@techsolutions.my",
		"phone":             "+60387654321",
		"website":           "http://techsolutions.my",
		"business_category": "Technology / Software",
		"city":              "Kuala Lumpur",
	}
}

func pagePayload() map[string]any {
	return map[string]any{
		"url":   "https://www.techsolutions.my",
		"title": "Tech Solutions | Professional Software Development",
		"content": "Tech Solutions is a leading software development company based " +
			"in Kuala Lumpur. Contact us at sales@techsolutions.my or call our " +
			"office at +60378901234. Visit us at 123 Jalan Bukit Bintang, Kuala Lumpur.",
	}
}

func fullLead() model.Lead {
	return model.Lead{
		Organization: "Complete Company",
		PersonName:   "John Smith",
		Role:         "CEO",
		Email:        "john@complete.com",
		Phone:        "+60123456789",
		Address:      "123 Main Street",
		City:         "Kuala Lumpur",
		State:        "Kuala Lumpur",
		PostalCode:   "50000",
		Website:      "https://www.complete.com",
		Industry:     "Technology",
		SocialMedia:  map[string]string{"instagram": "https://instagram.com/complete"},
		Location:     &model.Coordinates{Latitude: 3.15, Longitude: 101.7},
	}
}
