// internal/pipeline/present-result/config.go
package presentresult

type Config struct {
	ChartWidth int
	FileName   string
	MimeType   string
}

func LoadConfig() *Config {
	return &Config{
		ChartWidth: 40,
		FileName:   "customer_churn_prediction.csv",
		MimeType:   "text/csv",
	}
}
