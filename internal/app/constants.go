package app

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
// The engine itself accepts a single player; a hosted table needs an opponent.
const MinPlayersToStartGame = 2
