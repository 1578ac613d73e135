package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"

	"github.com/muraqib/backend/config"
	"github.com/muraqib/backend/database"
	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/stats"
	"github.com/muraqib/backend/store"
)

var sampleStreets = []struct {
	name     string
	lat, lng float64
}{
	{"King Fahd Road", 24.7136, 46.6753},
	{"Olaya Street", 24.6949, 46.6853},
	{"Al Yarmook Street", 24.77481, 46.820259},
	{"Al Qadisiyah Street", 24.656092, 46.879334},
	{"Makkah Al Mukarramah Road", 24.6877, 46.7219},
	{"King Abdullah Road", 24.7297, 46.6853},
	{"Northern Ring Road", 24.7743, 46.7384},
}

var samplePlates = []string{
	"RKA 1234", "TMB 5678", "DLX 9012", "KSA 3456", "NJD 7890",
	"RUH 2468", "HSA 1357", "QSM 8642", "ASR 9753", "JED 1597",
}

var vehicleTypes = []models.VehicleType{
	models.VehicleCar,
	models.VehicleCar,
	models.VehicleCar,
	models.VehicleTruck,
	models.VehicleBus,
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("🌱 Starting violation seed...")

	violations := store.New(database.DB)
	ctx := context.Background()

	rand.Seed(time.Now().UnixNano())
	now := time.Now()
	totalCreated := 0

	// Create violations spread over the last 90 days
	for _, street := range sampleStreets {
		numViolations := rand.Intn(20) + 10 // 10-29 violations per street

		for i := 0; i < numViolations; i++ {
			daysAgo := rand.Intn(90)
			day := now.AddDate(0, 0, -daysAgo)

			violationType := models.OvertakingFromRight
			if rand.Intn(2) == 0 {
				violationType = models.OvertakingFromLeft
			}

			violation := models.Violation{
				Date:               day.Format(stats.DateLayout),
				Time:               fmt.Sprintf("%02d:%02d", rand.Intn(24), rand.Intn(60)),
				LicensePlateNumber: samplePlates[rand.Intn(len(samplePlates))],
				ViolationType:      violationType,
				VehicleType:        vehicleTypes[rand.Intn(len(vehicleTypes))],
				StreetName:         street.name,
				Latitude:           street.lat + (rand.Float64()-0.5)*0.01,
				Longitude:          street.lng + (rand.Float64()-0.5)*0.01,
			}

			if err := violations.Create(ctx, &violation); err != nil {
				log.Fatalf("Failed to create violation: %v", err)
			}
			totalCreated++
		}
	}

	fmt.Printf("✅ Seeded %d violations across %d streets\n", totalCreated, len(sampleStreets))
}
