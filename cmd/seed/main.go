package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/FieldAtlas/FA-Backend/internal/assets"
	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/media"
	"github.com/FieldAtlas/FA-Backend/internal/overlays"
	"github.com/FieldAtlas/FA-Backend/internal/seeds"
	"github.com/FieldAtlas/FA-Backend/internal/sites"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	store, err := storage.NewLocal(storage.LoadFromEnv())
	if err != nil {
		log.Fatal("Failed to open upload store: ", err)
	}

	media.Init(store)
	overlays.Init(store)
	assets.Init(media.Default)
	surveys.Init(cascade.NewController(assets.Default, media.Default, overlays.Default), store)
	sites.Init(surveys.Default, store)

	if err := seeds.SeedAll(context.Background(), store); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
