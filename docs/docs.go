// Package docs NoteMap Service API.
//
// Backend for the location-tagged notes map. Aggregates geotagged posts,
// normalizes legacy location encodings, derives the visible marker set per
// map session and serves the render model the map widget draws.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
