package core

// TraceStats counts work done while evaluating radiance
type TraceStats struct {
	RaysCast          int64 // Rays resolved against the scene
	IntersectionTests int64 // Individual shape intersection tests
}
