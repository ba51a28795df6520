package metrics

// Predefined metrics for the beacon node and validator client. All
// metrics live in DefaultRegistry so they are globally accessible
// without passing a registry around.

var (
	// ---- Shuffling / committee metrics ----

	// ShuffleDuration records how long a single epoch's validator
	// shuffling takes to compute, in seconds.
	ShuffleDuration = DefaultRegistry.Histogram(
		"beacon_shuffle_duration_seconds",
		"Time to compute a validator shuffling for one epoch.",
		nil,
	)
	// CommitteeSplitDuration records how long splitting a shuffled
	// validator set into committees takes, in seconds.
	CommitteeSplitDuration = DefaultRegistry.Histogram(
		"beacon_committee_split_duration_seconds",
		"Time to split a shuffled validator set into committees.",
		nil,
	)

	// ---- Duties manager metrics ----

	// DutiesPollOutcomes counts duties poll results by outcome
	// (NoChange, NewDuties, DutiesChanged, UnknownValidatorOrEpoch).
	DutiesPollOutcomes = DefaultRegistry.CounterVec(
		"beacon_duties_poll_outcomes_total",
		"Count of validator duties poll outcomes by result.",
		[]string{"outcome"},
	)
	// DutiesPollErrors counts duties polls that returned an error.
	DutiesPollErrors = DefaultRegistry.Counter(
		"beacon_duties_poll_errors_total",
		"Count of validator duties polls that returned an error.",
	)

	// ---- Merkle tree cache metrics ----

	// MerkleCacheHits counts internal tree-hash nodes whose cached
	// value was reused because neither child changed since the last
	// recompute.
	MerkleCacheHits = DefaultRegistry.Counter(
		"beacon_merkle_cache_hits_total",
		"Count of internal Merkle tree nodes reused without rehashing.",
	)
	// MerkleCacheMisses counts internal tree-hash nodes that had to be
	// rehashed because a child changed since the last recompute.
	MerkleCacheMisses = DefaultRegistry.Counter(
		"beacon_merkle_cache_misses_total",
		"Count of internal Merkle tree nodes rehashed on recompute.",
	)

	// ---- Validator key store metrics ----

	// KeystorePuts counts successful ValidatorStore.Put calls.
	KeystorePuts = DefaultRegistry.Counter(
		"beacon_keystore_puts_total",
		"Count of validator public keys written to the key store.",
	)
	// KeystoreBackendErrors counts key store operations that failed at
	// the storage backend.
	KeystoreBackendErrors = DefaultRegistry.Counter(
		"beacon_keystore_backend_errors_total",
		"Count of validator key store operations that failed at the storage backend.",
	)

	// ---- Slashing protection metrics ----

	// SlashableOffensesDetected counts attester/proposer slashing
	// conditions detected locally before signing.
	SlashableOffensesDetected = DefaultRegistry.CounterVec(
		"beacon_slashable_offenses_detected_total",
		"Count of locally detected slashing conditions by kind.",
		[]string{"kind"},
	)
)
