package config

import "github.com/yungbote/courseforge/internal/types"

func defaultCourseDoc() CourseDoc {
	return CourseDoc{
		DefaultCourse: "general_science",
		Courses: map[string]CourseTemplate{
			"general_science": {
				Name:        "Foundations of Modern Science",
				Subject:     "Science",
				Level:       "Undergraduate",
				Description: "A survey course covering the core ideas and methods of modern science.",
				Language:    "English",
				Structure:   defaultStructure(),
			},
		},
		ContentRequirements: defaultRequirements(),
	}
}

func defaultStructure() types.StructureConfig {
	return types.StructureConfig{
		NumModules:         4,
		TotalSessions:      12,
		Subtopics:          types.Bounds{Min: 3, Max: 5},
		LearningObjectives: types.Bounds{Min: 3, Max: 5},
		KeyConcepts:        types.Bounds{Min: 3, Max: 5},
		DiagramsPerSession: 2,
	}
}

func defaultRequirements() map[types.Kind]Requirements {
	return map[types.Kind]Requirements{
		types.KindLecture: {
			MinWordCount: 800,
			MaxWordCount: 3000,
			MinSections:  4,
			MaxSections:  8,
			MinExamples:  5,
			MaxExamples:  15,
		},
		types.KindLab: {
			MinWordCount: 400,
			MaxWordCount: 2500,
			MinSteps:     5,
		},
		types.KindStudyNotes: {
			MinWordCount:   300,
			MaxWordCount:   2000,
			MinKeyConcepts: 5,
			MaxKeyConcepts: 10,
			MinSections:    2,
			MaxSections:    8,
		},
		types.KindQuestions: {
			NumQuestions: 10,
			MCRatio:      0.5,
			SARatio:      0.3,
			EssayRatio:   0.2,
		},
		types.KindDiagram: {
			MinNodes: 3,
		},
		types.KindVisualization: {
			MinNodes: 3,
		},
		types.KindApplication: {
			MinWordCount: 300,
			MaxWordCount: 2000,
			MinItems:     2,
			MaxItems:     6,
		},
		types.KindExtension: {
			MinWordCount: 300,
			MaxWordCount: 2000,
			MinItems:     2,
			MaxItems:     6,
		},
		types.KindIntegration: {
			MinWordCount: 200,
			MaxWordCount: 1500,
			MinItems:     3,
			MaxItems:     10,
		},
		types.KindInvestigation: {
			MinWordCount: 200,
			MaxWordCount: 1500,
			MinItems:     2,
			MaxItems:     6,
		},
		types.KindOpenQuestions: {
			MinWordCount: 150,
			MaxWordCount: 1200,
			MinItems:     3,
			MaxItems:     8,
		},
	}
}

func defaultLLMDoc() LLMDoc {
	return LLMDoc{
		BaseURL:        "http://localhost:11434",
		GeneratePath:   "/api/generate",
		Model:          "qwen2.5:14b",
		TimeoutDefault: 300,
		Parameters: map[string]any{
			"temperature": 0.7,
			"num_predict": 4096,
			"top_p":       0.9,
		},
		OperationTimeouts: map[types.Kind]int{
			types.KindOutline:       600,
			types.KindLecture:       600,
			types.KindLab:           450,
			types.KindStudyNotes:    300,
			types.KindDiagram:       180,
			types.KindQuestions:     450,
			types.KindApplication:   300,
			types.KindExtension:     300,
			types.KindVisualization: 180,
			types.KindIntegration:   300,
			types.KindInvestigation: 300,
			types.KindOpenQuestions: 240,
		},
		// Per-kind truncation of the session context passed into secondary
		// generators. integration and open_questions deliberately get the
		// short limit; treat as tunable, not as a rule.
		ContextLimits: map[types.Kind]int{
			types.KindLecture:       50000,
			types.KindApplication:   50000,
			types.KindExtension:     50000,
			types.KindVisualization: 50000,
			types.KindInvestigation: 50000,
			types.KindIntegration:   2000,
			types.KindOpenQuestions: 2000,
		},
	}
}

func defaultOutputDoc() OutputDoc {
	d := OutputDoc{BaseDir: "output"}
	d.Directories.Outlines = "outlines"
	d.Directories.Modules = "modules"
	d.Directories.Website = "website"
	d.Directories.Logs = "logs"
	return d
}
