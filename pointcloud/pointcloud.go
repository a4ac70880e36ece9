// Package pointcloud defines a point cloud and provides an implementation for one.
//
// Clouds hold the LIDAR map the camera frustum moves through. They are read from PCD files or
// generated synthetically when no map is available.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	HasColor bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns an empty bounding box.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge updates the meta data with the new data.
func (meta *MetaData) Merge(v r3.Vector, data Data) {
	if data != nil && data.HasColor() {
		meta.HasColor = true
	}

	meta.MaxX = math.Max(meta.MaxX, v.X)
	meta.MaxY = math.Max(meta.MaxY, v.Y)
	meta.MaxZ = math.Max(meta.MaxZ, v.Z)

	meta.MinX = math.Min(meta.MinX, v.X)
	meta.MinY = math.Min(meta.MinY, v.Y)
	meta.MinZ = math.Min(meta.MinZ, v.Z)
}

// Empty reports whether nothing has been merged.
func (meta MetaData) Empty() bool {
	return meta.MinX > meta.MaxX
}

// Size returns the extent of the bounding box along each axis.
func (meta MetaData) Size() r3.Vector {
	if meta.Empty() {
		return r3.Vector{}
	}
	return r3.Vector{X: meta.MaxX - meta.MinX, Y: meta.MaxY - meta.MinY, Z: meta.MaxZ - meta.MinZ}
}

// MaxSideLength returns the longest side of the bounding box.
func (meta MetaData) MaxSideLength() float64 {
	s := meta.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Center returns the center of the bounding box.
func (meta MetaData) Center() r3.Vector {
	if meta.Empty() {
		return r3.Vector{}
	}
	return r3.Vector{X: (meta.MaxX + meta.MinX) / 2, Y: (meta.MaxY + meta.MinY) / 2, Z: (meta.MaxZ + meta.MinZ) / 2}
}

// PointCloud is a general purpose container of points.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns meta data
	MetaData() MetaData

	// Set places the given point in the cloud.
	Set(p r3.Vector, d Data) error

	// At returns the point in the cloud at the given position.
	// The 2nd return is if the point exists, the first is data if any.
	At(x, y, z float64) (Data, bool)

	// Iterate iterates over all points in the cloud and calls the given
	// function for each point. If the supplied function returns false,
	// iteration will stop after the function returns.
	// numBatches lets you divide up he work. 0 means don't divide
	// myBatch is used iff numBatches > 0 and is which batch you want
	Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool)
}

// Positions returns every point position in iteration order.
func Positions(cloud PointCloud) []r3.Vector {
	positions := make([]r3.Vector, 0, cloud.Size())
	cloud.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		positions = append(positions, p)
		return true
	})
	return positions
}
