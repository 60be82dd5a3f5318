package config

import "sync"

// CullSettings holds occlusion cull tree configuration
type CullSettings struct {
	mu               sync.RWMutex
	tolerance        float32 // world units a vertex may sit off a plane and still count as on it
	safetyDist       float32 // how far past a plane a volume must reach before it is culled
	normalizeFrustum bool
	cullFarPlane     bool
	maxNodes         int
}

// Snapshot is an immutable copy of the cull settings, taken once per frame.
type Snapshot struct {
	Tolerance        float32
	SafetyDist       float32
	NormalizeFrustum bool
	CullFarPlane     bool
	MaxNodes         int
}

var globalCullSettings = &CullSettings{
	tolerance:        0.1,
	safetyDist:       -0.1,
	normalizeFrustum: true,
	cullFarPlane:     true,
	maxNodes:         4096,
}

// GetSnapshot returns the current settings in one lock acquisition
func GetSnapshot() Snapshot {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return Snapshot{
		Tolerance:        globalCullSettings.tolerance,
		SafetyDist:       globalCullSettings.safetyDist,
		NormalizeFrustum: globalCullSettings.normalizeFrustum,
		CullFarPlane:     globalCullSettings.cullFarPlane,
		MaxNodes:         globalCullSettings.maxNodes,
	}
}

// GetTolerance returns the polygon split tolerance
func GetTolerance() float32 {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return globalCullSettings.tolerance
}

// SetTolerance sets the polygon split tolerance
func SetTolerance(tol float32) {
	globalCullSettings.mu.Lock()
	defer globalCullSettings.mu.Unlock()

	// Clamp to reasonable values
	if tol < 0.001 {
		tol = 0.001
	}
	if tol > 10 {
		tol = 10
	}

	globalCullSettings.tolerance = tol
}

// GetSafetyDist returns the culling safety distance (zero or negative)
func GetSafetyDist() float32 {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return globalCullSettings.safetyDist
}

// SetSafetyDist sets the culling safety distance
func SetSafetyDist(dist float32) {
	globalCullSettings.mu.Lock()
	defer globalCullSettings.mu.Unlock()

	if dist > 0 {
		dist = 0
	}
	if dist < -10 {
		dist = -10
	}

	globalCullSettings.safetyDist = dist
}

// GetNormalizeFrustum returns whether frustum planes are normalized after extraction
func GetNormalizeFrustum() bool {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return globalCullSettings.normalizeFrustum
}

// SetNormalizeFrustum sets whether frustum planes are normalized after extraction
func SetNormalizeFrustum(enabled bool) {
	globalCullSettings.mu.Lock()
	defer globalCullSettings.mu.Unlock()
	globalCullSettings.normalizeFrustum = enabled
}

// GetCullFarPlane returns whether the far plane takes part in the frustum
func GetCullFarPlane() bool {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return globalCullSettings.cullFarPlane
}

// SetCullFarPlane sets whether the far plane takes part in the frustum
func SetCullFarPlane(enabled bool) {
	globalCullSettings.mu.Lock()
	defer globalCullSettings.mu.Unlock()
	globalCullSettings.cullFarPlane = enabled
}

// GetMaxNodes returns the node budget of a cull tree
func GetMaxNodes() int {
	globalCullSettings.mu.RLock()
	defer globalCullSettings.mu.RUnlock()
	return globalCullSettings.maxNodes
}

// SetMaxNodes sets the node budget of a cull tree
func SetMaxNodes(n int) {
	globalCullSettings.mu.Lock()
	defer globalCullSettings.mu.Unlock()

	if n < 64 {
		n = 64
	}
	if n > 1<<20 {
		n = 1 << 20
	}

	globalCullSettings.maxNodes = n
}
