package models

// Row is one transaction of the loaded dataset.
type Row struct {
	City         string  `json:"city"`
	CustomerType string  `json:"customer_type"`
	Gender       string  `json:"gender"`
	ProductLine  string  `json:"product_line"`
	Total        float64 `json:"total"`
	Rating       float64 `json:"rating"`
	Time         string  `json:"time"`
	Hour         int     `json:"hour"`
}

type CategoryTotal struct {
	ProductLine string  `json:"product_line"`
	Total       float64 `json:"total"`
}

type HourTotal struct {
	Hour  int     `json:"hour"`
	Total float64 `json:"total"`
}

// Summary holds the scalar cards. All values are zero when Count is zero.
type Summary struct {
	Count         int     `json:"count"`
	TotalSales    float64 `json:"total_sales"`
	MeanSale      float64 `json:"mean_sale"`
	MeanRating    float64 `json:"mean_rating"`
	RatingRounded float64 `json:"rating_rounded"`
	Stars         int     `json:"stars"`
}

func (s Summary) Empty() bool {
	return s.Count == 0
}

type AggregateResult struct {
	ByProductLine []CategoryTotal `json:"by_product_line"`
	ByHour        []HourTotal     `json:"by_hour"`
	Summary       Summary         `json:"summary"`
}

// FilterOptions lists the selectable values of each filter dimension.
type FilterOptions struct {
	Cities        []string `json:"cities"`
	CustomerTypes []string `json:"customer_types"`
	Genders       []string `json:"genders"`
}

// DashboardData is what the presentation layer renders for one selection.
type DashboardData struct {
	Selection    FilterOptions   `json:"selection"`
	Result       AggregateResult `json:"result"`
	Cards        Cards           `json:"cards"`
	Notification *Notification   `json:"notification,omitempty"`
}

// Cards are the display strings of the summary cards.
type Cards struct {
	TotalSales    string `json:"total_sales"`
	AverageSales  string `json:"average_sales"`
	AverageRating string `json:"average_rating"`
	Stars         string `json:"stars"`
}

type Notification struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
