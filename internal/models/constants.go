package models

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)

// Upload limits enforced by the transport before the classifier runs.
const (
	MaxUploadBytes = 100 * 1024 * 1024
)

// AcceptedImageExtensions lists the file extensions accepted for upload.
var AcceptedImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
