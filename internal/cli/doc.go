// Package cli provides the interactive provas terminal client.
//
// It wires configuration, the local medium, the catalog source and the exam
// repository, then runs a REPL over them. The client subscribes to
// repository snapshots: a published catalog switches the prompt to online
// mode, a failed background fetch back to offline.
//
// Commands:
//   - list / catalog        user exams / remote catalog
//   - add / delete <id>     manage user exams
//   - show <id>             details of one exam from either collection
//   - refresh               reload both collections
//   - clear                 remove every user exam
//   - notify [on|off]       show or change the reminders setting
//   - help / exit
//
// App.Run starts the REPL without waiting for the first catalog fetch and
// blocks until the user exits.
package cli
