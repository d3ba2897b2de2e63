package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// sidecarDocument mirrors the JSON written by the export tool. Pointers
// let missing members be told apart from zero values.
type sidecarDocument struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	PhotoTakenTime *struct {
		Timestamp *string `json:"timestamp"`
		Formatted string  `json:"formatted"`
	} `json:"photoTakenTime"`
	GeoData *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Altitude  *float64 `json:"altitude"`
	} `json:"geoData"`
}

// ParseSidecar decodes sidecar content into SidecarMetadata
func ParseSidecar(data []byte) (*SidecarMetadata, error) {
	var doc sidecarDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Field: typeErr.Field, Reason: "expected " + typeErr.Type.String()}
		}
		return nil, &ParseError{Reason: err.Error()}
	}

	if doc.PhotoTakenTime == nil || doc.PhotoTakenTime.Timestamp == nil {
		return nil, &ParseError{Field: "photoTakenTime.timestamp", Reason: "missing"}
	}
	takenAt, err := strconv.ParseInt(*doc.PhotoTakenTime.Timestamp, 10, 64)
	if err != nil {
		return nil, &ParseError{
			Field:  "photoTakenTime.timestamp",
			Reason: fmt.Sprintf("not a numeric string: %q", *doc.PhotoTakenTime.Timestamp),
		}
	}

	geo := doc.GeoData
	switch {
	case geo == nil:
		return nil, &ParseError{Field: "geoData", Reason: "missing"}
	case geo.Latitude == nil:
		return nil, &ParseError{Field: "geoData.latitude", Reason: "missing"}
	case geo.Longitude == nil:
		return nil, &ParseError{Field: "geoData.longitude", Reason: "missing"}
	case geo.Altitude == nil:
		return nil, &ParseError{Field: "geoData.altitude", Reason: "missing"}
	}

	return &SidecarMetadata{
		Title:       doc.Title,
		Description: doc.Description,
		TakenAt:     takenAt,
		TakenAtText: doc.PhotoTakenTime.Formatted,
		Geo: GeoData{
			Latitude:  *geo.Latitude,
			Longitude: *geo.Longitude,
			Altitude:  *geo.Altitude,
		},
	}, nil
}

// LoadSidecar reads and parses the sidecar at path
func LoadSidecar(path string) (*SidecarMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read sidecar %s: %w", ErrIO, path, err)
	}

	meta, err := ParseSidecar(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}
