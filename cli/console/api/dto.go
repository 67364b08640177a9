package api

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"

type selectVehicleRequest struct {
	VehicleID *int32 `json:"vehicle_id"`
}

type historyWindowRequest struct {
	Hours int `json:"hours" binding:"required"`
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type pointRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type mapClickRequest struct {
	pointRequest
	Name string `json:"name"`
}

type mapMovedRequest struct {
	pointRequest
	Zoom int `json:"zoom"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type saveMarkerRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type searchResultRequest = model.SearchResult
