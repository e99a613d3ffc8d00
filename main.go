package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/FieldAtlas/FA-Backend/internal/assets"
	"github.com/FieldAtlas/FA-Backend/internal/cascade"
	"github.com/FieldAtlas/FA-Backend/internal/db"
	"github.com/FieldAtlas/FA-Backend/internal/media"
	"github.com/FieldAtlas/FA-Backend/internal/middleware"
	"github.com/FieldAtlas/FA-Backend/internal/overlays"
	"github.com/FieldAtlas/FA-Backend/internal/sites"
	"github.com/FieldAtlas/FA-Backend/internal/storage"
	"github.com/FieldAtlas/FA-Backend/internal/surveys"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	store, err := storage.NewLocal(storage.LoadFromEnv())
	if err != nil {
		log.Fatal("Failed to open upload store: ", err)
	}

	// Init order follows the dependency chain: media and overlays first,
	// then assets (hotspot cleanup), then surveys over all three, then
	// sites on top.
	media.Init(store)
	overlays.Init(store)
	assets.Init(media.Default)
	surveys.Init(cascade.NewController(assets.Default, media.Default, overlays.Default), store)
	sites.Init(surveys.Default, store)

	r := chi.NewRouter()
	r.Use(middleware.CORS(middleware.AllowedOrigins()))
	r.Get("/", RootHandler)

	r.Mount("/sites", sites.SetupRoutes())
	r.Mount("/surveys", surveys.SetupRoutes())
	r.Mount("/asset-types", assets.SetupTypeRoutes())
	r.Mount("/assets", assets.SetupRoutes())
	r.Mount("/panos", media.SetupPanoRoutes())
	r.Mount("/photos", media.SetupPhotoRoutes())
	r.Mount("/hotspots", media.SetupHotspotRoutes())
	r.Mount("/overlays", overlays.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
