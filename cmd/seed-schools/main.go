package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/database"
	"github.com/stemsi/school-directory/internal/logger"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/repository"
	"github.com/stemsi/school-directory/internal/service"
)

var demoCities = []struct{ city, state string }{
	{"Springfield", "IL"},
	{"Austin", "TX"},
	{"Portland", "OR"},
	{"Madison", "WI"},
	{"Raleigh", "NC"},
}

func main() {
	count := flag.Int("count", 10, "Number of schools to insert")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	schoolRepo, err := repository.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer schoolRepo.Close()

	schoolService := service.NewSchoolService(schoolRepo, service.NewMediaService(cfg), nil, log)

	fmt.Printf("=== Seeding %d Schools ===\n", *count)

	for i := 1; i <= *count; i++ {
		loc := demoCities[(i-1)%len(demoCities)]
		fields := model.SchoolFields{
			Name:    fmt.Sprintf("Demo School %d", i),
			Address: fmt.Sprintf("%d Main St", 100+i),
			City:    loc.city,
			State:   loc.state,
			Contact: fmt.Sprintf("555-%04d", i),
			EmailID: fmt.Sprintf("office%d@demo-school.example", i),
		}

		img, err := placeholderPNG(i)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to render placeholder image")
		}

		school, err := schoolService.CreateFromReader(ctx, fields, fmt.Sprintf("demo-%d.png", i), bytes.NewReader(img))
		if err != nil {
			log.Error().Err(err).Int("n", i).Msg("Failed to seed school")
			continue
		}
		fmt.Printf("Created %s with ID: %d (%s)\n", school.Name, school.ID, school.Image)
	}

	fmt.Println("Done.")
}

// placeholderPNG renders a 64x64 solid tile whose hue varies with n.
func placeholderPNG(n int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	c := color.RGBA{R: uint8(40 * n), G: uint8(120 + 15*n), B: uint8(200 - 10*n), A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
