// Package io imports and exports graph documents in JSON, TOML and YAML.
//
// # Formats
//
// All three formats carry the same [graph.Document] fields. JSON:
//
//	{
//	  "name": "pipes",
//	  "vars": {"main": 10},
//	  "nodes": [{"id": 1}, {"id": 2, "x": 3, "y": 1}],
//	  "edges": [{"from": 1, "to": 2, "capacity_expr": "main / 2"}]
//	}
//
// TOML:
//
//	name = "pipes"
//
//	[vars]
//	main = 10.0
//
//	[[nodes]]
//	id = 1
//
//	[[edges]]
//	from = 1
//	to = 2
//	capacity = 4.0
//
// YAML uses the same keys as JSON.
//
// Unknown keys are rejected in every format so misspelled fields surface as
// errors instead of silently defaulting to zero.
//
// # Import
//
// Use [ImportFile] to read a file, picking the decoder from its extension
// (.json, .toml, .yaml, .yml), or [Read] / [ReadJSON] / [ReadTOML] /
// [ReadYAML] for any io.Reader:
//
//	doc, err := io.ImportFile("network.toml")
//
// Errors are wrapped with the file path.
//
// # Export
//
// [ExportFile] and [Write] mirror the import side.
package io
