package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"printsociety/internal/model"

	"github.com/shopspring/decimal"
)

// Writes two sample promo catalog files. promos_seasonal.gz overrides STICKY10 from
// promos_base.gz, so loading them in that order exercises catalog merging.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	yearEnd := time.Date(time.Now().Year(), 12, 31, 23, 59, 59, 0, time.UTC)

	catalogs := map[string][]model.PromoCode{
		"promos_base.gz": {
			{Code: "STICKY10", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(10), MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)), IsActive: true},
			{Code: "WELCOME5", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(5), IsActive: true},
			{Code: "RETIRED15", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(15), IsActive: false},
		},
		"promos_seasonal.gz": {
			{Code: "SUMMER20", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(20), MaxDiscount: decimal.NewNullDecimal(decimal.NewFromInt(100)), ExpiresAt: yearEnd, IsActive: true},
			{Code: "STICKY10", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(10), MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)), ExpiresAt: yearEnd, IsActive: true},
		},
	}

	for filename, codes := range catalogs {
		filePath := filepath.Join(dataDir, filename)

		if err := createPromoFile(filePath, codes); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(codes))
	}

	fmt.Println("\nSet PROMO_FILE_PATHS=data/promos/promos_base.gz,data/promos/promos_seasonal.gz to load them.")
}

func createPromoFile(filePath string, codes []model.PromoCode) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := json.NewEncoder(gzipWriter)
	for _, code := range codes {
		if err := encoder.Encode(code); err != nil {
			return fmt.Errorf("failed to write code %s: %w", code.Code, err)
		}
	}

	return gzipWriter.Close()
}
