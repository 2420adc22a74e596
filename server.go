// server.go
//
// This source file is part of the FoundationDB open source project
//
// Copyright 2026 Apple Inc. and the FoundationDB project authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//


package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/apple/foundationdb/plotsync/api"
	"github.com/apple/foundationdb/plotsync/internal/store"
	"github.com/go-logr/logr"
)

// stateAPI exposes the session state to the rendering layer. All mutations
// go through the store.
type stateAPI struct {
	// store is the session store.
	store *store.Store

	// logger is the logger for this API.
	logger logr.Logger
}

// addPlotResponse is returned when a plot was created.
type addPlotResponse struct {
	ID int `json:"id"`
}

// fullscreenRequest sets the display flag of the full-screen plot.
type fullscreenRequest struct {
	Show bool `json:"show"`
}

// errorResponse is returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// newStateAPI creates a new stateAPI.
func newStateAPI(logger logr.Logger, sessionStore *store.Store) *stateAPI {
	return &stateAPI{
		store:  sessionStore,
		logger: logger.WithValues("area", "stateAPI"),
	}
}

// register adds the state API routes to the mux.
func (server *stateAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", server.getState)
	mux.HandleFunc("POST /api/plots", server.addPlot)
	mux.HandleFunc("DELETE /api/plots/{id}", server.removePlot)
	mux.HandleFunc("PUT /api/plots/{id}/layout", server.updateLayout)
	mux.HandleFunc("PUT /api/fullscreen", server.setFullscreen)
	mux.HandleFunc("DELETE /api/error-modal", server.dismissErrorModal)
}

func (server *stateAPI) getState(w http.ResponseWriter, _ *http.Request) {
	server.writeJSON(w, http.StatusOK, server.store.Snapshot())
}

func (server *stateAPI) addPlot(w http.ResponseWriter, _ *http.Request) {
	server.writeJSON(w, http.StatusCreated, addPlotResponse{ID: server.store.AddPlot()})
}

func (server *stateAPI) removePlot(w http.ResponseWriter, r *http.Request) {
	id, ok := server.plotID(w, r)
	if !ok {
		return
	}

	if !server.store.RemovePlot(id) {
		server.writeError(w, http.StatusNotFound, fmt.Errorf("could not remove plot %d: %w", id, store.ErrPlotNotFound))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (server *stateAPI) updateLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := server.plotID(w, r)
	if !ok {
		return
	}

	layout := api.Layout{}
	err := json.NewDecoder(r.Body).Decode(&layout)
	if err != nil {
		server.writeError(w, http.StatusBadRequest, fmt.Errorf("could not parse layout: %w", err))
		return
	}

	err = server.store.UpdateLayout(id, layout)
	if errors.Is(err, store.ErrPlotNotFound) {
		server.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		server.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (server *stateAPI) setFullscreen(w http.ResponseWriter, r *http.Request) {
	request := fullscreenRequest{}
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		server.writeError(w, http.StatusBadRequest, fmt.Errorf("could not parse request: %w", err))
		return
	}

	server.store.ShowFullscreen(request.Show)
	w.WriteHeader(http.StatusNoContent)
}

func (server *stateAPI) dismissErrorModal(w http.ResponseWriter, _ *http.Request) {
	server.store.DismissErrorModal()
	w.WriteHeader(http.StatusNoContent)
}

// plotID parses the id path value. It writes a bad request response and
// returns false if the value is not an integer.
func (server *stateAPI) plotID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		server.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid plot id %q: %w", r.PathValue("id"), err))
		return 0, false
	}

	return id, true
}

func (server *stateAPI) writeError(w http.ResponseWriter, status int, err error) {
	server.logger.V(1).Info("Rejected state API request", "status", status, "error", err.Error())
	server.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (server *stateAPI) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		server.logger.Error(err, "Error writing state API response")
	}
}
