package engine

import "salesdash/internal/models"

// sampleRows is a small fixture covering every filter dimension.
func sampleRows() []models.Row {
	return []models.Row{
		{City: "Yangon", CustomerType: "Member", Gender: "Female", ProductLine: "Health and beauty", Total: 548.97, Rating: 9.1, Time: "13:08:00", Hour: 13},
		{City: "Naypyitaw", CustomerType: "Normal", Gender: "Female", ProductLine: "Electronic accessories", Total: 80.22, Rating: 9.6, Time: "10:29:00", Hour: 10},
		{City: "Yangon", CustomerType: "Normal", Gender: "Male", ProductLine: "Home and lifestyle", Total: 340.53, Rating: 7.4, Time: "13:23:00", Hour: 13},
		{City: "Yangon", CustomerType: "Member", Gender: "Male", ProductLine: "Health and beauty", Total: 489.05, Rating: 8.4, Time: "20:33:00", Hour: 20},
		{City: "Mandalay", CustomerType: "Normal", Gender: "Male", ProductLine: "Sports and travel", Total: 634.38, Rating: 5.3, Time: "10:37:00", Hour: 10},
		{City: "Naypyitaw", CustomerType: "Member", Gender: "Female", ProductLine: "Electronic accessories", Total: 627.62, Rating: 4.1, Time: "18:30:00", Hour: 18},
	}
}
