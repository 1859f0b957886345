// Package config loads vrt configuration.
//
// Configuration lives in vrt.json, vrt.yaml, vrt.yml or vrt.toml (searched
// in that order). Every field is optional; missing values take defaults.
//
// # Configuration File Structure
//
//	log:
//	  level: info        # debug, info, warn, error
//	  format: text       # text, json
//	reactivity:
//	  edgePolicy: retain # retain, clear
//	metrics:
//	  namespace: vrt
//	tracing:
//	  enabled: false
//	  tracerName: github.com/vango-dev/vrt/pkg/renderer
//	inspect:
//	  addr: ":7070"
//	  scene: scenes/keyed-reorder.yaml
//	render:
//	  format: text       # text, json, msgpack
//	  export: s3://bucket/snapshots
//
// Environment variables VRT_LOG_LEVEL, VRT_EDGE_POLICY and VRT_INSPECT_ADDR
// override the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Logger(os.Stderr)
package config
