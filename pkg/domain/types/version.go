package types

// Version is overwritten by ldflags at release build time
var Version = "dev"

// ServiceName is reported by the health endpoint and used as the Slack username
const ServiceName = "tagwatch"
