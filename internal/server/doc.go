// Package server exposes a diagram controller over HTTP for a browser-side
// rendering surface.
//
// The surface reports user gestures (clicks, double clicks, drags, resizes,
// removals) as events and change batches; the server applies them to the
// controller and answers with the updated graph. Dialog editing, image
// paste, rates, the live summary, document load/save and exports are
// exposed under /api. Prometheus metrics are served on /metrics when a
// [Metrics] is configured.
//
// A single mutex serializes access to the controller, so the controller's
// single-owner model holds even though HTTP handlers run concurrently.
// Image decoding runs outside the lock; a result whose target went stale in
// the meantime is dropped.
package server
