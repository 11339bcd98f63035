// Package segment implements segment definition management and the entry
// points for segment evaluation (matching customers, counts, previews).
//
// Evaluation itself lives in internal/segmentation; this service owns
// persistence of segment definitions and wires stored segments into the
// engine. Repository implementations live in repository/postgres/.
package segment
