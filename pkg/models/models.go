package models

import (
	"encoding/json"
	"time"
)

// Thumbnail represents a single exported crop within a frame
type Thumbnail struct {
	ThumbName string `json:"thumbName" yaml:"thumbName" toml:"thumbName"`
	Label     string `json:"label" yaml:"label" toml:"label"`
	Url       string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Texts     string `json:"texts" yaml:"texts" toml:"texts"`
	Image     string `json:"image" yaml:"image" toml:"image"`
}

// Frame represents one page of the design export with its thumbnails
type Frame struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Image      string      `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	Url        string      `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Thumbnails []Thumbnail `json:"thumbnails" yaml:"thumbnails" toml:"thumbnails"`
}

// IndexDocument is the canonical shape of an uploaded index
type IndexDocument struct {
	Frames []Frame `json:"frames" yaml:"frames" toml:"frames"`
}

// IndexRecord is a stored upload as kept by the index store
type IndexRecord struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"projectId"`
	FigmaFileKey string          `json:"figmaFileKey"`
	FileName     string          `json:"fileName"`
	IndexData    json.RawMessage `json:"indexData"`
	UploadedAt   time.Time       `json:"uploadedAt"`
}

// IndexSummary describes a stored index on the project list
type IndexSummary struct {
	ID             string    `json:"filename"`
	ProjectID      string    `json:"projectId"`
	FigmaFileKey   string    `json:"figmaFileKey"`
	FileName       string    `json:"fileName"`
	UploadedAt     time.Time `json:"uploadedAt"`
	Size           int       `json:"size"`
	FrameCount     int       `json:"frameCount"`
	ThumbnailCount int       `json:"thumbnailCount"`
}

// Upload is the payload the design plugin posts
type Upload struct {
	ProjectID    string          `json:"projectId"`
	FigmaFileKey string          `json:"figmaFileKey"`
	FileName     string          `json:"fileName"`
	IndexData    json.RawMessage `json:"indexData"`
}

// Summarize derives the list view of a record
func (r IndexRecord) Summarize() IndexSummary {
	doc := NormalizeIndexData(r.IndexData)
	thumbs := 0
	for _, f := range doc.Frames {
		thumbs += len(f.Thumbnails)
	}

	projectID := r.ProjectID
	if projectID == "" {
		projectID = "unknown"
	}
	fileKey := r.FigmaFileKey
	if fileKey == "" {
		fileKey = "unknown"
	}
	fileName := r.FileName
	if fileName == "" {
		fileName = "Unknown File"
	}

	return IndexSummary{
		ID:             r.ID,
		ProjectID:      projectID,
		FigmaFileKey:   fileKey,
		FileName:       fileName,
		UploadedAt:     r.UploadedAt,
		Size:           len(r.IndexData),
		FrameCount:     len(doc.Frames),
		ThumbnailCount: thumbs,
	}
}
