package domain

// Client facing messages. Every error body carries one or more of these.
const (
	MsgUnauthorized            = "Unauthorized access."
	MsgFileTooLarge            = "File size exceeds the maximum limit."
	MsgInvalidDuration         = "Video duration must be between %g and %g seconds."
	MsgTrimError               = "Error occurred while trimming the video."
	MsgMergeError              = "Error occurred while merging the videos."
	MsgProbeError              = "Error occurred while reading the video metadata."
	MsgShareLinkExpired        = "The share link has expired."
	MsgVideoNotFound           = "Video not found."
	MsgInvalidRequest          = "Invalid request parameters."
	MsgInternalServerError     = "Internal server error."
	MsgInvalidFileType         = "Invalid file type. Only video files are allowed."
	MsgNoFileUploaded          = "No file uploaded"
	MsgOneOrMoreVideoNotFound  = "One or more videos not found."
	MsgInvalidVideoIDs         = "videoIds must be a non-empty array."
	MsgOutputFileNameRequired  = "outputFileName is required."
	MsgInputFileNotFound       = "Input video file not found"
	MsgMergeFileError          = "Failed to create merged video file"
	MsgMinimumVideoIDsRequired = "At least two video IDs are required to merge."
	MsgVideoIDRequired         = "videoId is a required field."
	MsgStartOrEndTimeRequired  = "At least one of startTime or endTime must be provided."
	MsgInvalidStartTime        = "startTime must be a valid number."
	MsgInvalidEndTime          = "endTime must be a valid number."
	MsgInvalidTrimRange        = "Invalid trim range: startTime must be non-negative and before endTime, and endTime must not exceed the video duration."
	MsgTrimTooShort            = "Trimmed video must be at least %g seconds long."
	MsgMergedDurationTooLong   = "Merged video would exceed the maximum allowed duration of %g seconds."
)

// Success messages
const (
	MsgVideoUploaded    = "Video uploaded successfully."
	MsgVideoTrimmed     = "Video trimmed successfully."
	MsgVideoMerged      = "Videos merged successfully."
	MsgShareLinkCreated = "Shareable link created successfully."
)
