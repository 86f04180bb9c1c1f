package utils

// DefaultChunkSize is the buffer size used when streaming a response body to disk.
const DefaultChunkSize = 8192

const ToolUserAgent = "wikigrab/1.0 (Educational/Research Purpose)"
