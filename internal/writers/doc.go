// Package writers turns projected groups into serialized reports.
//
// Design:
//   - Writers own the format registry and the output sink.
//   - Engine stays domain-only; pipeline stays orchestration-only.
//   - JSON/YAML go through pkg/api (v1) for a stable wire format.
package writers
