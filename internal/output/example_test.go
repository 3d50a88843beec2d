package output_test

import (
	"os"
	"time"

	"github.com/aryankumar/stackup/internal/output"
	"github.com/aryankumar/stackup/internal/pipeline"
)

func ExampleJSONFormatter_FormatStages() {
	results := []pipeline.Result{
		{Stage: "environment validation", Status: pipeline.StatusSucceeded, Duration: 5 * time.Millisecond},
		{Stage: "cluster bring-up", Status: pipeline.StatusSkipped},
	}

	output.NewFormatter(output.FormatJSON).FormatStages(os.Stdout, results)

	// Output:
	// [
	//   {
	//     "stage": "environment validation",
	//     "status": "succeeded",
	//     "duration": "5ms"
	//   },
	//   {
	//     "stage": "cluster bring-up",
	//     "status": "skipped",
	//     "duration": "0s"
	//   }
	// ]
}
