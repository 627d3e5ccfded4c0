package workload

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameSorter orders items by a locale-aware comparison of their names, ties broken by id.
// A collate.Collator is not safe for concurrent use: build one per sort.
type nameSorter struct {
	col *collate.Collator
}

func newNameSorter(tag language.Tag) nameSorter {
	return nameSorter{col: collate.New(tag)}
}

func (ns nameSorter) less(nameA, idA, nameB, idB string) bool {
	if c := ns.col.CompareString(nameA, nameB); c != 0 {
		return c < 0
	}
	return idA < idB
}

func (ns nameSorter) sortTeachers(teachers []Teacher) {
	sort.SliceStable(teachers, func(i, j int) bool {
		return ns.less(teachers[i].Name, teachers[i].ID, teachers[j].Name, teachers[j].ID)
	})
}

func (ns nameSorter) sortSummaries(sums []TeacherSummary) {
	sort.SliceStable(sums, func(i, j int) bool {
		return ns.less(sums[i].TeacherName, sums[i].TeacherID, sums[j].TeacherName, sums[j].TeacherID)
	})
}

func (ns nameSorter) sortDetails(details []AssignmentDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if c := ns.col.CompareString(a.SubjectName, b.SubjectName); c != 0 {
			return c < 0
		}
		return ns.less(a.ClassroomName, a.ID, b.ClassroomName, b.ID)
	})
}
