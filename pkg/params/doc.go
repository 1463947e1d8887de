// Package params reads and writes the session parameters that hand a prepared
// catalog from the setup step to the session surface.
//
// Values are stored as strings under the keys in pkg/domain: the ordered trial
// list as JSON, durations as whole milliseconds.
package params
