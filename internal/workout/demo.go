package workout

import "github.com/LeRenardBlanc/TPlanner/internal/models"

// DemoProgram returns the built-in demonstration exercises for a day. It is
// the fallback when the database holds no program for that day, so a fresh
// install can still run a workout. Unknown days yield nil.
func DemoProgram(day string) []models.ProgramExercise {
	switch day {
	case "Mercredi":
		return []models.ProgramExercise{
			{Day: "Mercredi", Name: "Tirage vertical prise neutre", Sets: 4, Reps: "8-10", TargetWeight: 59.0, TargetRPE: 8, Category: "Dos", OrderIndex: 0},
			{Day: "Mercredi", Name: "Rowing haltère", Sets: 3, Reps: "10-12", TargetWeight: 22.0, TargetRPE: 8, Category: "Dos", OrderIndex: 1},
		}
	case "Samedi":
		comment := "Bas des pecs"
		return []models.ProgramExercise{
			{Day: "Samedi", Name: "Développé décliné haltères", Sets: 4, Reps: "8-10", TargetWeight: 55.0, TargetRPE: 7, Category: "Pecs", Comment: &comment, OrderIndex: 0},
			{Day: "Samedi", Name: "Dips", Sets: 4, Reps: "10-12", TargetWeight: 0.0, TargetRPE: 9, Category: "Pecs", OrderIndex: 1},
		}
	default:
		return nil
	}
}
