package metamodel

func entity(name, table string) EntityType {
	return EntityType{Name: name, Table: table}
}

func descriptor(name, table string, associations ...Association) *ModelDescriptor {
	d := NewModelDescriptor("main", entity(name, table), "postgres")
	for _, a := range associations {
		d.AddAssociation(a)
	}
	return d
}

func schoolCatalog() *EntityCatalog {
	catalog := NewEntityCatalog()
	catalog.Add(entity("school.Student", "students"))
	catalog.Add(entity("school.Teacher", "teachers"))
	catalog.Add(entity("school.Course", "courses"))
	return catalog
}

// schoolRegistry registers students and teachers that both reach courses
// through the enrollments join table.
func schoolRegistry(opts ...Option) *Registry {
	size := 255
	students := descriptor("school.Student", "students",
		&ManyToMany{SourceType: "school.Student", TargetType: "school.Course", Join: "enrollments", SourceFKName: "student_id", TargetFKName: "course_id"},
	)
	students.SetColumnMetadata(map[string]ColumnMetadata{
		"id":   NewColumnMetadata("id", "INTEGER", nil),
		"name": NewColumnMetadata("name", "VARCHAR", &size),
	})
	teachers := descriptor("school.Teacher", "teachers",
		&ManyToMany{SourceType: "school.Teacher", TargetType: "school.Course", Join: "enrollments", SourceFKName: "teacher_id", TargetFKName: "course_id"},
		&OneToMany{SourceType: "school.Teacher", TargetType: "school.Course", FKName: "teacher_id"},
	)
	courses := descriptor("school.Course", "courses",
		&BelongsTo{SourceType: "school.Course", TargetType: "school.Teacher", FKName: "teacher_id"},
	)
	courses.SetColumnMetadata(map[string]ColumnMetadata{
		"id":         NewColumnMetadata("id", "INTEGER", nil),
		"teacher_id": NewColumnMetadata("teacher_id", "INTEGER", nil),
	})

	r := NewRegistry(opts...)
	r.Register(students, "school.Student")
	r.Register(teachers, "school.Teacher")
	r.Register(courses, "school.Course")
	return r
}
