package metadata

/** Definition for the entry point of a job. Runs on a worker. */
type JobStart func(params interface{}) (interface{}, error)

/** Definition for completion of a job. Runs on the thread calling JobSystem.Update. */
type JobOnComplete func(result interface{})

/** Definition for failure of a job. Runs on the thread calling JobSystem.Update. */
type JobOnFailure func(err error)

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief A resource loading job, such as fetching the bytes of an asset.
	 */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief The type of job. */
	JobType JobType
	/** @brief Invoked on a worker when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked on the main thread when the job succeeds. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked on the main thread when the job fails. Optional. */
	OnFailure JobOnFailure
	/** @brief Data passed to OnStart. */
	InputParams interface{}
}

/**
 * @brief The outcome of a finished job, queued until the next update.
 */
type JobResultEntry struct {
	Task   JobTask
	Result interface{}
	Err    error
}

// The max number of job results that can be stored at once.
const MAX_JOB_RESULTS int = 512
