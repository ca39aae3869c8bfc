package metadata

/** Definition for the body of a job. */
type JobStart func() error

/** Definition for the outcome callbacks of a job. */
type JobOnComplete func()

type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run by a worker. Jobs must not touch the
 * graphics context, they run off the render thread.
 */
type JobTask struct {
	/** @brief A function to be invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked when OnStart returns nil. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked with the error returned by OnStart. Optional. */
	OnFailure JobOnFailure
	/** @brief Invoked after either outcome. Optional. */
	OnCompletionCallback JobOnComplete
}
