package config

// Default paths for databases and on-device storage
const (
	// DefaultDatabasePath is the default path for the server database
	DefaultDatabasePath = "./pharmastudy.db"

	// DefaultMediaDir is where uploaded images land with the disk media backend
	DefaultMediaDir = "./media"

	// DefaultClientDataDir is the on-device store used by studyctl in local mode
	DefaultClientDataDir = "./.pharmastudy"

	// DefaultLookupBaseURL is the PubChem PUG REST endpoint
	DefaultLookupBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

	// DefaultMaxUploadBytes caps image uploads at 5 MiB
	DefaultMaxUploadBytes = 5 << 20
)
