package config

// Version is the spoolci release version.
const Version = "1.0.0"
