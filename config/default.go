package config

// This doesn't belong to config, but are the vars used
// to avoid repetition in config-files
const DefaultVars = `
PathRWData = "/tmp/movement"
NetworkID = 1

`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the movement node

# Log configuration
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

# Common configuration
[Common]
  # NetworkID is the network id the node reports to its clients
  NetworkID = {{NetworkID}}

[Escrow]
  # DBPath is the path of the database holding the transfers and the ledgers
  DBPath = "{{PathRWData}}/escrow.sqlite"
  # VaultAddress is the local account that custodies every locked transfer.
  # Wrapped allowances have to be granted to this address before initiating
  VaultAddress = "0x0000000000000000000000000000000000000e5c"
  # GenesisNative funds native accounts the first time the node starts, e.g.
  # GenesisNative = [{Address = "0x00000000000000000000000000000000000000aa", Balance = "1000000000000000000"}]
  GenesisNative = []
  # GenesisWrapped funds wrapped accounts the first time the node starts
  GenesisWrapped = []

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 8560
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10

[RefundSponsor]
  # Enabled indicates if the sponsor should be run or not
  Enabled = true
  # ScanPeriod is the time between two scans for expired transfers
  ScanPeriod = "5s"
  # MaxPendingPerScan caps how many refunds a single scan attempts
  MaxPendingPerScan = 128
  # RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicing.
  # Any number smaller than zero will be considered as unlimited retries
  MaxRetryAttemptsAfterError = -1

`
